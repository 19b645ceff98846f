package placeorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/customer"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/order"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/product"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, model order.PlaceOrderModel) (*order.Order, error)
}

// itemInPlaceOrderRequest represents an item in a place order request.
type itemInPlaceOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// placeOrderRequest represents a place order request.
type placeOrderRequest struct {
	CustomerID int64                     `json:"customerId" validate:"gt=0"`
	Items      []itemInPlaceOrderRequest `json:"items"      validate:"required,min=1,dive"`
}

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts placeOrderRequest to order.PlaceOrderModel.
func (r *placeOrderRequest) toModel() order.PlaceOrderModel {
	items := make([]order.RequestedItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.RequestedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return order.PlaceOrderModel{
		CustomerID: r.CustomerID,
		Items:      items,
	}
}

// PlaceOrder handles the place order request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	placedOrder, err := service.PlaceOrder(r.Context(), req.toModel())
	if err != nil {
		http.Error(w, err.Error(), statusFromError(err))
		slog.Error("Error placing order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(placedOrder); err != nil {
		slog.Error("Error sending response for place order", "error", err)
	}
}

// statusFromError maps placement failures to HTTP status codes.
func statusFromError(err error) int {
	var notFound *product.NotFoundError
	var insufficient *product.InsufficientStockError
	var invalidQuantity *order.InvalidQuantityError

	switch {
	case errors.Is(err, customer.ErrNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidQuantity), errors.Is(err, order.ErrNoItems):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
