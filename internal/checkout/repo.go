package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/microshop/microshop-backend/pkg/db/models"
)

// Repository exposes persistence operations for pending cart clears.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a pending-clear repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) PendingClearRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Upsert records a failed clear for the owner. One row per owner: a
// repeat failure refreshes the error instead of stacking rows.
func (r *Repository) Upsert(ctx context.Context, ownerID, lastError string) error {
	record := models.PendingCartClear{
		OwnerID:   ownerID,
		LastError: &lastError,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.Assignments(map[string]any{"last_error": lastError}),
		}).
		Create(&record).Error
}

// ListBatch returns the oldest pending clears up to limit.
func (r *Repository) ListBatch(ctx context.Context, limit int) ([]models.PendingCartClear, error) {
	var rows []models.PendingCartClear
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecordFailure bumps the attempt counter and stores the latest error.
func (r *Repository) RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingCartClear{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}

// Delete removes a resolved pending clear.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PendingCartClear{}).Error
}
