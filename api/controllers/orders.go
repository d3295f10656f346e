package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/microshop/microshop-backend/api/middleware"
	"github.com/microshop/microshop-backend/api/responses"
	"github.com/microshop/microshop-backend/api/validators"
	checkoutsvc "github.com/microshop/microshop-backend/internal/checkout"
	"github.com/microshop/microshop-backend/internal/orders"
	"github.com/microshop/microshop-backend/pkg/db/models"
	"github.com/microshop/microshop-backend/pkg/enums"
	pkgerrors "github.com/microshop/microshop-backend/pkg/errors"
	"github.com/microshop/microshop-backend/pkg/logger"
)

// PlaceOrder runs checkout for the owner's cart. A committed order with a
// failed cart clear still returns 201, with cart_cleared=false.
func PlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An empty body is a valid checkout request; chunked bodies
		// carry no Content-Length, so decode and tolerate only EOF.
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), checkoutsvc.PlaceOrderInput{
			OwnerID:         middleware.OwnerFromContext(r.Context()),
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, placeOrderResponse{
			Order:       newOrderResponse(result.Order),
			CartCleared: result.CartCleared,
		})
	}
}

// GetOrder returns a single order by ID.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a valid uuid"))
			return
		}

		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(record))
	}
}

// ListOrders returns the owner's orders, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListByOwner(r.Context(), middleware.OwnerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]orderResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// SetOrderStatus moves an order to the requested status.
func SetOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a valid uuid"))
			return
		}

		var payload setOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		record, err := svc.SetStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(record))
	}
}

type placeOrderRequest struct {
	ShippingAddress string `json:"shipping_address,omitempty"`
}

type placeOrderResponse struct {
	Order       orderResponse `json:"order"`
	CartCleared bool          `json:"cart_cleared"`
}

type setOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OwnerID         string              `json:"owner_id"`
	Status          string              `json:"status"`
	Total           decimal.Decimal     `json:"total"`
	ShippingAddress string              `json:"shipping_address"`
	Items           []orderLineResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type orderLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func newOrderResponse(record *models.Order) orderResponse {
	if record == nil {
		return orderResponse{}
	}
	items := make([]orderLineResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, orderLineResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return orderResponse{
		ID:              record.ID,
		OwnerID:         record.OwnerID,
		Status:          string(record.Status),
		Total:           record.Total,
		ShippingAddress: record.ShippingAddress,
		Items:           items,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
