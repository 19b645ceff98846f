package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/currency"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/orderitem"
)

// ErrNoItems is returned when a placement request carries no items.
var ErrNoItems = errors.New("order must contain at least one item")

// Order represents a placed order with its line items.
// Orders are immutable once created.
type Order struct {
	ID                 int64                 `json:"id"`
	CustomerID         int64                 `json:"customerId"`
	TotalPriceCents    int64                 `json:"totalPriceCents"`
	TotalPriceCurrency currency.Currency     `json:"totalPriceCurrency"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	OrderItems         []orderitem.OrderItem `json:"orderItems"`
}

// RequestedItem is a product-quantity pair of a placement request.
type RequestedItem struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderModel is the input of the order placement operation. Item
// order is preserved in the persisted line items; the same product may
// appear more than once.
type PlaceOrderModel struct {
	CustomerID int64
	Items      []RequestedItem
}

// InvalidQuantityError reports a requested quantity that is not a
// positive integer.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %d", e.Quantity, e.ProductID)
}
