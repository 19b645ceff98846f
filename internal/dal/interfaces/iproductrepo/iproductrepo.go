package iproductrepo

import (
	"context"

	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/product"
)

// IProductRepository is an interface for product lookups and stock
// decrements.
type IProductRepository interface {
	// FindAllByIDs returns the products matching the given ids, silently
	// omitting unknown ids.
	FindAllByIDs(ctx context.Context, ids []int64) ([]product.Product, error)

	// DecrementStock conditionally subtracts quantities from available
	// stock, all-or-nothing across the batch. Returns
	// product.InsufficientStockError when any item cannot be covered.
	DecrementStock(ctx context.Context, items []product.DecrementItem) ([]product.Product, error)
}
