package order

import (
	"time"
)

// CreatedEvent is the payload published for every placed order through
// the transactional outbox.
type CreatedEvent struct {
	EventID         string             `json:"eventId"`
	OrderID         int64              `json:"orderId"`
	CustomerID      int64              `json:"customerId"`
	TotalPriceCents int64              `json:"totalPriceCents"`
	Items           []CreatedEventItem `json:"items"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// CreatedEventItem mirrors one line item in a CreatedEvent.
type CreatedEventItem struct {
	ProductID  int64 `json:"productId"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"priceCents"`
}
