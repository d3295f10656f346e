package db

import (
	"context"
	"fmt"

	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/db/models"
	"github.com/microshop/microshop-backend/pkg/logger"
)

// MaybeAutoMigrate creates or updates the schema when enabled in config.
// Deployments that manage schema out of band set
// MICROSHOP_DB_AUTO_MIGRATE=false and this becomes a no-op.
func MaybeAutoMigrate(ctx context.Context, cfg config.DBConfig, logg *logger.Logger, client *Client) error {
	if !cfg.AutoMigrate {
		logg.Info(ctx, "auto-migrate disabled, skipping schema sync")
		return nil
	}

	err := client.DB().WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.PendingCartClear{},
	)
	if err != nil {
		return fmt.Errorf("running auto-migrate: %w", err)
	}

	logg.Info(ctx, "schema auto-migrate complete")
	return nil
}
