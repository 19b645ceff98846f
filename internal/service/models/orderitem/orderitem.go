package orderitem

import (
	"time"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/currency"
)

// OrderItem represents an item within an order. PriceCents is the unit
// price snapshotted at order time; later catalog price changes never
// affect it.
type OrderItem struct {
	ID            int64             `json:"id"`
	OrderID       int64             `json:"orderId"`
	ProductID     int64             `json:"productId"`
	Quantity      int               `json:"quantity"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
