package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/microshop/microshop-backend/pkg/db/models"
)

// seedProducts returns the starter catalog used by fresh environments.
func seedProducts() []models.Product {
	return []models.Product{
		{Name: "Laptop", Description: strPtr("High-performance laptop"), Price: decimal.RequireFromString("999.99"), IsActive: true},
		{Name: "Smartphone", Description: strPtr("Latest model smartphone"), Price: decimal.RequireFromString("699.99"), IsActive: true},
		{Name: "Headphones", Description: strPtr("Noise-cancelling headphones"), Price: decimal.RequireFromString("149.99"), IsActive: true},
		{Name: "Tablet", Description: strPtr("10-inch tablet"), Price: decimal.RequireFromString("349.99"), IsActive: true},
		{Name: "Smartwatch", Description: strPtr("Fitness tracking smartwatch"), Price: decimal.RequireFromString("249.99"), IsActive: true},
	}
}

func strPtr(value string) *string {
	return &value
}
