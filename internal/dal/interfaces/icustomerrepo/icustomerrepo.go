package icustomerrepo

import (
	"context"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/customer"
)

// ICustomerRepository is an interface for customer lookups.
type ICustomerRepository interface {
	// FindByID resolves a customer id, returning customer.ErrNotFound
	// when the customer does not exist.
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
}
