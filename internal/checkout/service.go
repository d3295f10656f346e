package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/microshop/microshop-backend/internal/orders"
	"github.com/microshop/microshop-backend/pkg/cartapi"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/db/models"
	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
	"github.com/microshop/microshop-backend/pkg/logger"
	"github.com/microshop/microshop-backend/pkg/metrics"
)

type cartGateway interface {
	Fetch(ctx context.Context, ownerID string) (*cartapi.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error)
}

// Service coordinates checkout across the cart and order services. The
// order commits first; the cart clear is best effort and is retried by
// the reconcile job when it fails.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error)
}

type service struct {
	cart     cartGateway
	orders   orderCreator
	pending  PendingClearRepository
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	checkout *metrics.CheckoutMetrics
}

// NewService builds a checkout coordinator backed by the provided stack.
func NewService(
	cart cartGateway,
	orderSvc orderCreator,
	pending PendingClearRepository,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if pending == nil {
		return nil, fmt.Errorf("pending clear repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cart:     cart,
		orders:   orderSvc,
		pending:  pending,
		cfg:      cfg,
		logg:     logg,
		checkout: checkoutMetrics,
	}, nil
}

// PlaceOrderInput captures the checkout request.
type PlaceOrderInput struct {
	OwnerID         string
	ShippingAddress string
}

// Result reports the committed order and whether the cart was cleared.
// CartCleared false means the order stands and the clear is pending.
type Result struct {
	Order       *models.Order
	CartCleared bool
}

// PlaceOrder snapshots the cart, commits the order, then clears the cart.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	cart, err := s.cart.Fetch(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot create order with empty cart")
	}

	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		address = s.cfg.DefaultShippingAddress
	}

	// Snapshot by value before anything can mutate the cart.
	lines := make([]orders.OrderLineInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, orders.OrderLineInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, orders.CreateOrderInput{
		OwnerID:         ownerID,
		ShippingAddress: address,
		Items:           lines,
	})
	if err != nil {
		return nil, err
	}
	s.checkout.IncOrdersPlaced()

	if err := s.cart.Clear(ctx, ownerID); err != nil {
		s.checkout.IncPartialCheckouts()
		s.logg.Warn(s.logg.WithOwnerID(ctx, ownerID), fmt.Sprintf("cart clear failed after order %s committed: %v", order.ID, err))
		if upsertErr := s.pending.Upsert(ctx, ownerID, err.Error()); upsertErr != nil {
			s.logg.Error(ctx, "recording pending cart clear", upsertErr)
		}
		return &Result{Order: order, CartCleared: false}, nil
	}

	return &Result{Order: order, CartCleared: true}, nil
}
