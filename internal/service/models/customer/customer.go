package customer

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer represents a customer able to place orders. Customers are
// managed by a separate service; this core only reads them.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
