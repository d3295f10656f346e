package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingCartClear records a cart whose clear failed after its order was
// already committed. The reconcile job retries these until the cart
// service acknowledges the (idempotent) clear.
type PendingCartClear struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   string    `gorm:"column:owner_id;not null;uniqueIndex"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
	LastError *string   `gorm:"column:last_error"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PendingCartClear) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
