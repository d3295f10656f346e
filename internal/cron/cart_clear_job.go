package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/microshop/microshop-backend/pkg/db/models"
	"github.com/microshop/microshop-backend/pkg/metrics"
)

const defaultReconcileBatch = 50

type pendingClears interface {
	ListBatch(ctx context.Context, limit int) ([]models.PendingCartClear, error)
	RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type cartClearer interface {
	Clear(ctx context.Context, ownerID string) error
}

// CartClearReconcileJob retries cart clears left behind by partial
// checkouts. Clearing is idempotent upstream, so retrying an
// already-cleared cart is harmless.
type CartClearReconcileJob struct {
	pending pendingClears
	cart    cartClearer
	metrics *metrics.CheckoutMetrics
	batch   int
}

// NewCartClearReconcileJob builds the reconcile job.
func NewCartClearReconcileJob(pending pendingClears, cart cartClearer, checkoutMetrics *metrics.CheckoutMetrics, batch int) (*CartClearReconcileJob, error) {
	if pending == nil {
		return nil, fmt.Errorf("pending clear repository required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &CartClearReconcileJob{
		pending: pending,
		cart:    cart,
		metrics: checkoutMetrics,
		batch:   batch,
	}, nil
}

// Name implements Job.
func (j *CartClearReconcileJob) Name() string {
	return "cart-clear-reconcile"
}

// Run works through a batch of pending clears. Failures are recorded on
// the row and collected; one stuck cart never blocks the rest.
func (j *CartClearReconcileJob) Run(ctx context.Context) error {
	rows, err := j.pending.ListBatch(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list pending clears: %w", err)
	}

	var errs error
	for _, row := range rows {
		j.metrics.IncClearRetries()
		if err := j.cart.Clear(ctx, row.OwnerID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("clear cart for %s: %w", row.OwnerID, err))
			if recErr := j.pending.RecordFailure(ctx, row.ID, err.Error()); recErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("record failure for %s: %w", row.OwnerID, recErr))
			}
			continue
		}
		if err := j.pending.Delete(ctx, row.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete pending clear for %s: %w", row.OwnerID, err))
			continue
		}
		j.metrics.IncClearRecovered()
	}
	return errs
}
