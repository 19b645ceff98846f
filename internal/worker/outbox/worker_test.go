package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	outboxmodel "github.com/leandrosouzaa/desafio-database-relations/internal/service/models/outbox"
	"github.com/streadway/amqp"
)

type fakeChannel struct {
	mu       sync.Mutex
	declared []string
	publishes []struct {
		exchange string
		key      string
		body     []byte
	}
	publishErr error
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publishErr != nil {
		return c.publishErr
	}
	c.publishes = append(c.publishes, struct {
		exchange string
		key      string
		body     []byte
	}{exchange, key, msg.Body})

	return nil
}

func (c *fakeChannel) QueueDeclare(
	name string,
	_, _, _, _ bool,
	_ amqp.Table,
) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.declared = append(c.declared, name)

	return amqp.Queue{Name: name}, nil
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []outboxmodel.OutboxMessage
	deleted []int64
	retried []int64
}

func (r *fakeOutboxRepo) Insert(_ context.Context, _ outboxmodel.OutboxMessage) error {
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outboxmodel.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit > len(r.pending) {
		limit = len(r.pending)
	}

	return append([]outboxmodel.OutboxMessage{}, r.pending[:limit]...), nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, _ int, _ string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.retried = append(r.retried, id)

	return nil
}

func TestNewWorker_DeclaresOrderCreatedQueue(t *testing.T) {
	channel := &fakeChannel{}
	newWorker(&fakeOutboxRepo{}, channel)

	if len(channel.declared) != 1 || channel.declared[0] != outboxmodel.OrderCreatedQueue {
		t.Fatalf("expected %q declared once, got %v", outboxmodel.OrderCreatedQueue, channel.declared)
	}
}

func TestProcessMessages_PublishesAndDeletes(t *testing.T) {
	channel := &fakeChannel{}
	repo := &fakeOutboxRepo{
		pending: []outboxmodel.OutboxMessage{
			{ID: 1, RoutingKey: outboxmodel.OrderCreatedQueue, Payload: []byte(`{"orderId":1}`)},
			{ID: 2, RoutingKey: outboxmodel.OrderCreatedQueue, Payload: []byte(`{"orderId":2}`)},
		},
	}

	w := newWorker(repo, channel)
	w.processMessages(context.Background())

	if len(channel.publishes) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(channel.publishes))
	}
	for _, p := range channel.publishes {
		if p.key != outboxmodel.OrderCreatedQueue {
			t.Errorf("expected routing key %q, got %q", outboxmodel.OrderCreatedQueue, p.key)
		}
	}
	if len(repo.deleted) != 2 {
		t.Errorf("expected 2 deletions, got %v", repo.deleted)
	}
	if len(repo.retried) != 0 {
		t.Errorf("expected no retries, got %v", repo.retried)
	}
}

func TestProcessMessages_RetriesOnPublishFailure(t *testing.T) {
	channel := &fakeChannel{}
	repo := &fakeOutboxRepo{
		pending: []outboxmodel.OutboxMessage{
			{ID: 7, RoutingKey: outboxmodel.OrderCreatedQueue, Payload: []byte(`{}`)},
		},
	}

	w := newWorker(repo, channel)
	channel.publishErr = errors.New("channel closed")
	w.processMessages(context.Background())

	if len(repo.deleted) != 0 {
		t.Errorf("expected message kept in outbox, got deletions %v", repo.deleted)
	}
	if len(repo.retried) != 1 || repo.retried[0] != 7 {
		t.Errorf("expected retry recorded for message 7, got %v", repo.retried)
	}
}
