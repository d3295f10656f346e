package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/microshop/microshop-backend/pkg/db/models"
)

// PendingClearRepository tracks carts whose clear failed after the order
// committed. Rows live until the reconcile job clears the cart upstream.
type PendingClearRepository interface {
	WithTx(tx *gorm.DB) PendingClearRepository
	Upsert(ctx context.Context, ownerID, lastError string) error
	ListBatch(ctx context.Context, limit int) ([]models.PendingCartClear, error)
	RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
