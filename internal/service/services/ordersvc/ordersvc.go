package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/icustomerrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iorderitemrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iorderrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/ioutboxrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/interfaces/iproductrepo"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/postgres"
	"github.com/leandrosouzaa/desafio-database-relations/internal/dal/uow"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/currency"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/customer"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/order"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/orderitem"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/outbox"
	"github.com/leandrosouzaa/desafio-database-relations/internal/service/models/product"
	"go.opentelemetry.io/otel"
)

const (
	tracerName      = "checkout-svc"
	eventMaxRetries = 5

	// maxItemQuantity bounds a single requested quantity. Matches the int4
	// order_items.quantity column and keeps per-product totals far from
	// int64 wraparound.
	maxItemQuantity = math.MaxInt32
)

// OrderService places orders against the shared product inventory.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
}

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	CustomerRepository() icustomerrepo.ICustomerRepository
	ProductRepository() iproductrepo.IProductRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// PlaceOrder validates the request, snapshots unit prices, persists the
// order with its line items and decrements inventory, all inside one
// transaction. Validation failures return before any write happens.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	model order.PlaceOrderModel,
) (*order.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if len(model.Items) == 0 {
		return nil, order.ErrNoItems
	}

	work := s.newUOW()

	if _, err := work.CustomerRepository().FindByID(ctx, model.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, err
		}

		return nil, &StorageError{Op: "find customer", Err: err}
	}

	ids, totals := aggregateItems(model.Items)

	products, err := work.ProductRepository().FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, &StorageError{Op: "find products", Err: err}
	}

	productsByID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	if len(productsByID) < len(ids) {
		missing := make([]int64, 0, len(ids)-len(productsByID))
		for _, id := range ids {
			if _, ok := productsByID[id]; !ok {
				missing = append(missing, id)
			}
		}

		return nil, &product.NotFoundError{ProductIDs: missing}
	}

	for _, item := range model.Items {
		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return nil, &order.InvalidQuantityError{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}
		}
	}

	// Pre-check against the snapshot. The decrement below re-checks
	// atomically; this pass only rejects obviously oversized requests
	// before any write.
	for _, id := range ids {
		if p := productsByID[id]; totals[id] > p.AvailableQuantity {
			return nil, &product.InsufficientStockError{
				ProductID: id,
				Requested: totals[id],
				Available: p.AvailableQuantity,
			}
		}
	}

	now := time.Now()
	items := make([]orderitem.OrderItem, len(model.Items))
	var totalCents int64
	for i, item := range model.Items {
		p := productsByID[item.ProductID]
		items[i] = orderitem.OrderItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PriceCents:    p.PriceCents,
			PriceCurrency: p.PriceCurrency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		totalCents += int64(item.Quantity) * p.PriceCents
	}

	if err := work.Begin(ctx); err != nil {
		return nil, &StorageError{Op: "begin transaction", Err: err}
	}
	defer func() {
		// No-op once the transaction is committed.
		_ = work.Rollback(ctx)
	}()

	inserted, err := work.OrderRepository().Insert(ctx, order.Order{
		CustomerID:         model.CustomerID,
		TotalPriceCents:    totalCents,
		TotalPriceCurrency: currency.CurrencyUSD,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, &StorageError{Op: "insert order", Err: err}
	}

	for i := range items {
		items[i].OrderID = inserted.ID
	}
	items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, &StorageError{Op: "insert order items", Err: err}
	}

	decrements := make([]product.DecrementItem, 0, len(ids))
	for _, id := range ids {
		decrements = append(decrements, product.DecrementItem{
			ProductID: id,
			Quantity:  totals[id],
		})
	}
	if _, err := work.ProductRepository().DecrementStock(ctx, decrements); err != nil {
		var insufficient *product.InsufficientStockError
		var notFound *product.NotFoundError
		if errors.As(err, &insufficient) || errors.As(err, &notFound) {
			return nil, err
		}

		return nil, &StorageError{Op: "decrement stock", Err: err}
	}

	if err := s.appendCreatedEvent(ctx, work.OutboxRepository(), inserted, items, now); err != nil {
		return nil, &StorageError{Op: "append order created event", Err: err}
	}

	if err := work.Commit(ctx); err != nil {
		return nil, &StorageError{Op: "commit order", Err: err}
	}

	inserted.OrderItems = items

	return inserted, nil
}

// aggregateItems returns the distinct product ids in first-seen order and
// the per-product quantity totals. Duplicate entries for a product are
// summed before stock sufficiency is checked.
func aggregateItems(items []order.RequestedItem) ([]int64, map[int64]int) {
	ids := make([]int64, 0, len(items))
	totals := make(map[int64]int, len(items))
	for _, item := range items {
		if _, ok := totals[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		totals[item.ProductID] += item.Quantity
	}

	return ids, totals
}

// appendCreatedEvent writes the order created event to the outbox inside
// the placement transaction.
func (s *OrderService) appendCreatedEvent(
	ctx context.Context,
	outboxRepo ioutboxrepo.IOutboxRepository,
	o *order.Order,
	items []orderitem.OrderItem,
	now time.Time,
) error {
	event := order.CreatedEvent{
		EventID:         uuid.NewString(),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		TotalPriceCents: o.TotalPriceCents,
		Items:           make([]order.CreatedEventItem, len(items)),
		CreatedAt:       o.CreatedAt,
	}
	for i, item := range items {
		event.Items[i] = order.CreatedEventItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return outboxRepo.Insert(ctx, outbox.OutboxMessage{
		QueueName:   outbox.OrderCreatedQueue,
		RoutingKey:  outbox.OrderCreatedQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  eventMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}

// GetOrders retrieves orders with their order items based on filter.
func (s *OrderService) GetOrders(
	ctx context.Context,
	model orderitem.QueryOrderItemsModel,
) ([]order.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "OrderService.GetOrders")
	defer span.End()

	limit := model.Limit
	offset := model.Offset
	if model.PageSize > 0 {
		limit = model.PageSize
		offset = (model.Page - 1) * model.PageSize
	}

	orderQuery := &order.QueryOrdersModel{
		Ids:         model.Ids,
		CustomerIds: model.CustomerIds,
		Limit:       limit,
		Offset:      offset,
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, orderQuery)
	if err != nil {
		return nil, &StorageError{Op: "query orders", Err: err}
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderItemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		orderItemQuery.OrderIds = append(orderItemQuery.OrderIds, o.ID)
	}
	orderItems, err := work.OrderItemRepository().Query(ctx, orderItemQuery)
	if err != nil {
		return nil, &StorageError{Op: "query order items", Err: err}
	}

	for i := range orders {
		for _, item := range orderItems {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}
