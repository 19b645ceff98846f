package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/icustomerrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iorderitemrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iorderrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/ioutboxrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iproductrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/postgres"
	customerrepo "github.com/leandrosouzaa/desafio-database-relations/internal/dal/repositories/customer/postgres"
	orderrepo "github.com/leandrosouzaa/desafio-database-relations/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/leandrosouzaa/desafio-database-relations/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/leandrosouzaa/desafio-database-relations/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/leandrosouzaa/desafio-database-relations/internal/dal/repositories/product/postgres"
)

// unitOfWork binds the repositories to a shared pgx transaction so order
// creation, line-item insertion, stock decrement and outbox append commit
// or roll back as one unit.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	customerRepo  icustomerrepo.ICustomerRepository
	productRepo   iproductrepo.IProductRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work bound to the connection pool.
// Until Begin is called the repositories run without a transaction.
func NewUnitOfWork(pgClient *postgres.Client) *unitOfWork {
	pool := pgClient.Pool()

	return &unitOfWork{
		pool:          pool,
		customerRepo:  customerrepo.NewPostgresCustomerRepository(pool),
		productRepo:   productrepo.NewPostgresProductRepository(pool),
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		outboxRepo:    outboxrepo.NewPostgresOutboxRepository(pool),
	}
}

func (u *unitOfWork) CustomerRepository() icustomerrepo.ICustomerRepository {
	return u.customerRepo
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin starts a transaction and rebinds the repositories to it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	u.tx = tx
	u.customerRepo = customerrepo.NewPostgresCustomerRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
