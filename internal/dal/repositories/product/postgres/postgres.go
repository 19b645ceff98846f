package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/postgres"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/currency"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/product"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id                int64     `db:"id"`
	Name              string    `db:"name"`
	PriceCents        int64     `db:"price_cents"`
	PriceCurrency     string    `db:"price_currency"`
	AvailableQuantity int       `db:"available_quantity"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:                p.Id,
		Name:              p.Name,
		PriceCents:        p.PriceCents,
		PriceCurrency:     cur,
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindAllByIDs retrieves products matching the given ids. Unknown ids are
// silently omitted from the result; callers detect them by comparing the
// result set against the requested set.
func (r *PostgresProductRepository) FindAllByIDs(
	ctx context.Context,
	ids []int64,
) ([]product.Product, error) {
	sql, args, err := r.sb.
		Select(
			"id",
			"name",
			"price_cents",
			"price_currency",
			"available_quantity",
			"created_at",
			"updated_at",
		).
		From("products").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.AvailableQuantity,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DecrementStock subtracts the requested quantities from available stock
// and returns the updated products. Each update is conditional: it only
// applies while available_quantity covers the requested quantity, so two
// concurrent decrements can never drive stock negative. Runs inside the
// caller's transaction; the first failing item aborts the whole batch.
func (r *PostgresProductRepository) DecrementStock(
	ctx context.Context,
	items []product.DecrementItem,
) ([]product.Product, error) {
	// Stable lock order across concurrent transactions.
	sorted := make([]product.DecrementItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	sql := `
		UPDATE products
		SET available_quantity = available_quantity - $1,
		    updated_at = now()
		WHERE id = $2 AND available_quantity >= $1
		RETURNING id, name, price_cents, price_currency, available_quantity, created_at, updated_at
	`

	result := make([]product.Product, 0, len(sorted))
	for _, item := range sorted {
		var dal ProductDal
		err := r.conn.QueryRow(ctx, sql, item.Quantity, item.ProductID).Scan(
			&dal.Id,
			&dal.Name,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.AvailableQuantity,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.insufficientStock(ctx, item)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	return result, nil
}

// insufficientStock builds the typed failure for a conditional update that
// matched no row, re-reading the current quantity for the error detail.
func (r *PostgresProductRepository) insufficientStock(
	ctx context.Context,
	item product.DecrementItem,
) error {
	var available int
	err := r.conn.QueryRow(
		ctx,
		`SELECT available_quantity FROM products WHERE id = $1`,
		item.ProductID,
	).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &product.NotFoundError{ProductIDs: []int64{item.ProductID}}
	}
	if err != nil {
		return fmt.Errorf("failed to read stock for product %d: %w", item.ProductID, err)
	}

	return &product.InsufficientStockError{
		ProductID: item.ProductID,
		Requested: item.Quantity,
		Available: available,
	}
}
