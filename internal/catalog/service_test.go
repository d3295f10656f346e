package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/microshop/microshop-backend/pkg/db/models"
	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
)

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
	order    []uuid.UUID
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) ProductRepository { return s }

func (s *stubProductRepo) Create(ctx context.Context, record *models.Product) (*models.Product, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	s.products[record.ID] = &copied
	s.order = append(s.order, record.ID)
	return record, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	record, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *stubProductRepo) List(ctx context.Context) ([]models.Product, error) {
	rows := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		rows = append(rows, *s.products[id])
	}
	return rows, nil
}

func (s *stubProductRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.products)), nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T) (Service, *stubProductRepo) {
	t.Helper()
	repo := newStubProductRepo()
	svc, err := NewService(repo, stubTx{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestCreateProductRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "   ",
		Price: decimal.RequireFromString("10.00"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc, _ := newTestService(t)

	for _, price := range []string{"0", "-1.50"} {
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:  "Laptop",
			Price: decimal.RequireFromString(price),
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %s: expected validation error, got %v", price, err)
		}
	}
}

func TestCreateProductPersists(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "  Laptop  ",
		Price: decimal.RequireFromString("999.99"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Laptop" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if !created.IsActive {
		t.Fatalf("expected new product active")
	}
	if _, ok := repo.products[created.ID]; !ok {
		t.Fatalf("expected product stored")
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSeedPopulatesEmptyCatalog(t *testing.T) {
	svc, repo := newTestService(t)

	inserted, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserted) != 5 {
		t.Fatalf("expected 5 seed products, got %d", len(inserted))
	}
	if len(repo.products) != 5 {
		t.Fatalf("expected 5 stored products, got %d", len(repo.products))
	}

	names := map[string]string{
		"Laptop":     "999.99",
		"Smartphone": "699.99",
		"Headphones": "149.99",
		"Tablet":     "349.99",
		"Smartwatch": "249.99",
	}
	for _, product := range inserted {
		want, ok := names[product.Name]
		if !ok {
			t.Fatalf("unexpected seed product %q", product.Name)
		}
		if product.Price.String() != want {
			t.Fatalf("product %q: expected price %s got %s", product.Name, want, product.Price)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	inserted, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("expected no inserts on reseed, got %d", len(inserted))
	}
	if len(repo.products) != 5 {
		t.Fatalf("expected catalog unchanged, got %d products", len(repo.products))
	}
}
