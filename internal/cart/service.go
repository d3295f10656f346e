package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/microshop/microshop-backend/pkg/catalogapi"
	"github.com/microshop/microshop-backend/pkg/db/models"
	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogapi.Product, error)
}

// Service exposes cart operations. Every mutation recomputes and persists
// the cart total in the same transaction as the line change.
type Service interface {
	Get(ctx context.Context, ownerID string) (*models.Cart, error)
	AddItem(ctx context.Context, ownerID string, input AddItemInput) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, ownerID string) (*models.Cart, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// AddItemInput captures the payload required to add a product to a cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Get returns the owner's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, ownerID string) (*models.Cart, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByOwner(ctx, ownerID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{
		OwnerID: ownerID,
		Total:   decimal.Zero,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

// AddItem merges the product into the cart. The product must resolve in
// the catalog on every add; an existing line keeps its price snapshot
// and gains quantity, a new line snapshots name and price at add time.
func (s *service) AddItem(ctx context.Context, ownerID string, input AddItemInput) (*models.Cart, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	// Every add resolves the product first; a vanished or unreachable
	// catalog fails the add before any cart mutation.
	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	var saved *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreate(ctx, txRepo, ownerID)
		if err != nil {
			return err
		}

		merged := false
		for i := range record.Items {
			if record.Items[i].ProductID == input.ProductID {
				// Existing lines keep their snapshot price.
				record.Items[i].Quantity += input.Quantity
				merged = true
				break
			}
		}
		if !merged {
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
			}
			record.Items = append(record.Items, models.CartItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  input.Quantity,
			})
		}

		saved, err = s.persist(ctx, txRepo, record)
		return err
	})
	if err != nil {
		return nil, coerceTxErr(err, "add cart item")
	}
	return saved, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line instead.
func (s *service) UpdateQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, ownerID, productID)
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.findExisting(ctx, txRepo, ownerID)
		if err != nil {
			return err
		}

		updated := false
		for i := range record.Items {
			if record.Items[i].ProductID == productID {
				record.Items[i].Quantity = quantity
				updated = true
				break
			}
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}

		saved, err = s.persist(ctx, txRepo, record)
		return err
	})
	if err != nil {
		return nil, coerceTxErr(err, "update cart item")
	}
	return saved, nil
}

// RemoveItem drops the line for the product.
func (s *service) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Cart, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.findExisting(ctx, txRepo, ownerID)
		if err != nil {
			return err
		}

		kept := record.Items[:0]
		found := false
		for _, item := range record.Items {
			if item.ProductID == productID {
				found = true
				continue
			}
			kept = append(kept, item)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}
		record.Items = kept

		saved, err = s.persist(ctx, txRepo, record)
		return err
	})
	if err != nil {
		return nil, coerceTxErr(err, "remove cart item")
	}
	return saved, nil
}

// Clear empties the cart. Clearing an already-empty or missing cart
// succeeds, so retries are safe.
func (s *service) Clear(ctx context.Context, ownerID string) (*models.Cart, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.getOrCreate(ctx, txRepo, ownerID)
		if err != nil {
			return err
		}

		record.Items = nil
		saved, err = s.persist(ctx, txRepo, record)
		return err
	})
	if err != nil {
		return nil, coerceTxErr(err, "clear cart")
	}
	return saved, nil
}

func (s *service) getOrCreate(ctx context.Context, repo CartRepository, ownerID string) (*models.Cart, error) {
	record, err := repo.FindByOwner(ctx, ownerID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.Cart{
		OwnerID: ownerID,
		Total:   decimal.Zero,
	})
}

func (s *service) findExisting(ctx context.Context, repo CartRepository, ownerID string) (*models.Cart, error) {
	record, err := repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	return record, nil
}

// persist rewrites the lines in order and saves the recomputed total.
func (s *service) persist(ctx context.Context, repo CartRepository, record *models.Cart) (*models.Cart, error) {
	for i := range record.Items {
		record.Items[i].Position = i
	}
	if err := repo.ReplaceItems(ctx, record.ID, record.Items); err != nil {
		return nil, err
	}
	record.Total = computeTotal(record.Items)
	return repo.Update(ctx, record)
}

func computeTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func validateOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	return nil
}

// coerceTxErr keeps coded errors raised inside a transaction intact and
// maps raw persistence failures to DEPENDENCY_ERROR.
func coerceTxErr(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
