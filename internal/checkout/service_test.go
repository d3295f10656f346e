package checkout

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/microshop/microshop-backend/internal/orders"
	"github.com/microshop/microshop-backend/pkg/cartapi"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/db/models"
	"github.com/microshop/microshop-backend/pkg/enums"
	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
	"github.com/microshop/microshop-backend/pkg/logger"
	"github.com/microshop/microshop-backend/pkg/metrics"
)

type stubCartGateway struct {
	cart       *cartapi.Cart
	fetchErr   error
	clearErr   error
	clearCalls int
}

func (s *stubCartGateway) Fetch(ctx context.Context, ownerID string) (*cartapi.Cart, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.cart, nil
}

func (s *stubCartGateway) Clear(ctx context.Context, ownerID string) error {
	s.clearCalls++
	return s.clearErr
}

type stubOrderCreator struct {
	created *orders.CreateOrderInput
	err     error
}

func (s *stubOrderCreator) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &input
	total := decimal.Zero
	for _, line := range input.Items {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &models.Order{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		Status:          enums.OrderStatusPending,
		Total:           total,
		ShippingAddress: input.ShippingAddress,
	}, nil
}

type stubPendingRepo struct {
	upserts   map[string]string
	upsertErr error
}

func newStubPendingRepo() *stubPendingRepo {
	return &stubPendingRepo{upserts: map[string]string{}}
}

func (s *stubPendingRepo) WithTx(tx *gorm.DB) PendingClearRepository { return s }

func (s *stubPendingRepo) Upsert(ctx context.Context, ownerID, lastError string) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts[ownerID] = lastError
	return nil
}

func (s *stubPendingRepo) ListBatch(ctx context.Context, limit int) ([]models.PendingCartClear, error) {
	return nil, nil
}

func (s *stubPendingRepo) RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	return nil
}

func (s *stubPendingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func sampleCart() *cartapi.Cart {
	return &cartapi.Cart{
		ID:      uuid.New(),
		OwnerID: "default-user",
		Items: []cartapi.Item{
			{ProductID: uuid.New(), Name: "Laptop", UnitPrice: decimal.RequireFromString("999.99"), Quantity: 2},
			{ProductID: uuid.New(), Name: "Headphones", UnitPrice: decimal.RequireFromString("149.99"), Quantity: 1},
		},
		Total: decimal.RequireFromString("2149.97"),
	}
}

func newTestService(t *testing.T, gateway *stubCartGateway, creator *stubOrderCreator, pending *stubPendingRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: &bytes.Buffer{}})
	svc, err := NewService(gateway, creator, pending, config.CheckoutConfig{
		DefaultOwner:           "default-user",
		DefaultShippingAddress: "123 Default Address",
	}, logg, metrics.NewCheckoutMetrics(nil))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPlaceOrderHappyPathClearsCart(t *testing.T) {
	gateway := &stubCartGateway{cart: sampleCart()}
	creator := &stubOrderCreator{}
	pending := newStubPendingRepo()
	svc := newTestService(t, gateway, creator, pending)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CartCleared {
		t.Fatalf("expected cart cleared")
	}
	if result.Order.Total.String() != "2149.97" {
		t.Fatalf("expected total 2149.97, got %s", result.Order.Total)
	}
	if gateway.clearCalls != 1 {
		t.Fatalf("expected one clear call, got %d", gateway.clearCalls)
	}
	if len(pending.upserts) != 0 {
		t.Fatalf("expected no pending clears, got %+v", pending.upserts)
	}
	if creator.created.ShippingAddress != "123 Default Address" {
		t.Fatalf("expected default address, got %q", creator.created.ShippingAddress)
	}
}

func TestPlaceOrderUsesProvidedAddress(t *testing.T) {
	gateway := &stubCartGateway{cart: sampleCart()}
	creator := &stubOrderCreator{}
	svc := newTestService(t, gateway, creator, newStubPendingRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		OwnerID:         "default-user",
		ShippingAddress: "42 Elm Street",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creator.created.ShippingAddress != "42 Elm Street" {
		t.Fatalf("expected provided address, got %q", creator.created.ShippingAddress)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	gateway := &stubCartGateway{cart: &cartapi.Cart{OwnerID: "default-user", Total: decimal.Zero}}
	creator := &stubOrderCreator{}
	svc := newTestService(t, gateway, creator, newStubPendingRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeEmptyCart {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
	if creator.created != nil {
		t.Fatalf("no order should be created for an empty cart")
	}
}

func TestPlaceOrderCartServiceDown(t *testing.T) {
	gateway := &stubCartGateway{fetchErr: pkgerrors.New(pkgerrors.CodeDependency, "cart fetch failed")}
	svc := newTestService(t, gateway, &stubOrderCreator{}, newStubPendingRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestPlaceOrderCreateFailureLeavesCartUntouched(t *testing.T) {
	gateway := &stubCartGateway{cart: sampleCart()}
	creator := &stubOrderCreator{err: pkgerrors.New(pkgerrors.CodeDependency, "order db down")}
	pending := newStubPendingRepo()
	svc := newTestService(t, gateway, creator, pending)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if gateway.clearCalls != 0 {
		t.Fatalf("cart must not be cleared when order creation fails")
	}
	if len(pending.upserts) != 0 {
		t.Fatalf("no pending clear should be recorded, got %+v", pending.upserts)
	}
}

func TestPlaceOrderPartialSuccessRecordsPendingClear(t *testing.T) {
	gateway := &stubCartGateway{
		cart:     sampleCart(),
		clearErr: pkgerrors.New(pkgerrors.CodeDependency, "cart clear failed"),
	}
	creator := &stubOrderCreator{}
	pending := newStubPendingRepo()
	svc := newTestService(t, gateway, creator, pending)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	if err != nil {
		t.Fatalf("partial success must not surface as error, got %v", err)
	}
	if result.CartCleared {
		t.Fatalf("expected cart_cleared=false")
	}
	if result.Order == nil {
		t.Fatalf("order must be returned on partial success")
	}
	if _, ok := pending.upserts["default-user"]; !ok {
		t.Fatalf("expected pending clear recorded")
	}
}

func TestPlaceOrderPartialSuccessSurvivesPendingWriteFailure(t *testing.T) {
	gateway := &stubCartGateway{
		cart:     sampleCart(),
		clearErr: pkgerrors.New(pkgerrors.CodeDependency, "cart clear failed"),
	}
	pending := newStubPendingRepo()
	pending.upsertErr = pkgerrors.New(pkgerrors.CodeDependency, "db down")
	svc := newTestService(t, gateway, &stubOrderCreator{}, pending)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CartCleared {
		t.Fatalf("expected cart_cleared=false")
	}
}

func TestPlaceOrderSnapshotIsCopiedByValue(t *testing.T) {
	cart := sampleCart()
	gateway := &stubCartGateway{cart: cart}
	creator := &stubOrderCreator{}
	svc := newTestService(t, gateway, creator, newStubPendingRepo())

	if _, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{OwnerID: "default-user"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the fetched cart afterwards must not affect the order lines.
	cart.Items[0].Quantity = 99
	if creator.created.Items[0].Quantity != 2 {
		t.Fatalf("order snapshot shares memory with cart payload")
	}
}
