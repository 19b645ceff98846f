package outbox

import (
	"time"
)

// OrderCreatedQueue is the queue order created events are published to.
// Declared by the outbox worker at startup; placement writes outbox rows
// routed to it.
const OrderCreatedQueue = "checkout.order.created"

// OutboxMessage represents an event waiting to be published to RabbitMQ.
// Rows are written in the same transaction as the state change they
// describe and removed once the publish succeeds.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
