package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	contractsv1 "clubvote/contracts/gen/events/v1"
)

const subscriberBuffer = 128

var ErrBusClosed = errors.New("event bus closed")

type subscription struct {
	events chan contractsv1.Envelope
	done   chan struct{}
}

// Bus is the event bus used by the outbox relay and ballot consumers.
// Delivery is in-process; broker addresses are accepted so the wiring
// matches an external broker deployment.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	closed      bool
	brokers     []string
	logger      *slog.Logger
	wg          sync.WaitGroup
}

func NewBus(brokers []string, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]*subscription),
		brokers:     append([]string(nil), brokers...),
		logger:      logger,
	}
}

// Publish blocks until every live subscriber of topic has buffered the event,
// so a relay only marks an outbox row published after delivery.
func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	subs := append([]*subscription(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
		case sub.events <- event:
		}
	}

	b.logger.Debug("event published",
		"event", "ballot_bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscribers", len(subs),
	)
	return nil
}

// Subscribe starts one delivery goroutine that lives until ctx is cancelled.
// Handler errors are logged; the event is not redelivered.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	sub := &subscription{
		events: make(chan contractsv1.Envelope, subscriberBuffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer close(sub.done)
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, sub)
				return
			case event := <-sub.events:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "ballot_bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Close rejects further publishes and subscriptions. Running subscribers
// still stop through their own contexts.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Wait blocks until every subscriber goroutine has returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

func (b *Bus) removeSubscriber(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]*subscription, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
