package product

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/currency"
)

// Product represents a catalog entry with its remaining stock.
// AvailableQuantity is mutated exclusively by the stock decrement that
// follows a successful order placement.
type Product struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	PriceCents        int64             `json:"priceCents"`
	PriceCurrency     currency.Currency `json:"priceCurrency"`
	AvailableQuantity int               `json:"availableQuantity"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// DecrementItem is a single entry of a stock decrement batch. Quantities
// for the same product must already be summed by the caller.
type DecrementItem struct {
	ProductID int64
	Quantity  int
}

// NotFoundError reports requested product ids that do not exist.
type NotFoundError struct {
	ProductIDs []int64
}

func (e *NotFoundError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	return "products not found: " + strings.Join(ids, ", ")
}

// InsufficientStockError reports a product whose available quantity does
// not cover the requested quantity, either at validation time or at
// decrement time.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID,
		e.Requested,
		e.Available,
	)
}
