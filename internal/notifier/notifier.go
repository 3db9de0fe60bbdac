// Package notifier is the in-process broadcast hub that tells connected event
// stream clients a record changed. Signals carry no payload: clients re-fetch.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-interests-api/app/observability/metrics"
)

// TopicUpdate is the only topic the hub carries.
const TopicUpdate = "update"

const defaultBuffer = 16

// Event is a single update signal.
type Event struct {
	ID    uuid.UUID
	Topic string
	At    time.Time
}

// Publisher is what mutating code depends on.
type Publisher interface {
	Publish(ctx context.Context) int
}

// Subscriber is what the event stream endpoint depends on.
type Subscriber interface {
	Subscribe() (<-chan Event, func())
}

var (
	_ Publisher  = (*Hub)(nil)
	_ Subscriber = (*Hub)(nil)
)

// Hub fans every published signal out to the current subscribers. A publish
// with no subscribers is dropped; nothing is buffered for future subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	buffer      int
	closed      bool
	logger      *slog.Logger
	metrics     *metrics.AppMetrics
}

// NewHub creates a hub whose subscriber channels hold up to buffer pending
// signals. Signals beyond that are dropped for the slow subscriber only.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		buffer:      buffer,
		logger:      logger,
		metrics:     metrics.Get(),
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes the
// subscription and closes the channel; it is safe to call more than once.
// Subscribing to a closed hub yields an already-closed channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("Subscriber added", slog.Int("subscribers", count))

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(ch) })
	}
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, ch)
	close(ch)
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("Subscriber removed", slog.Int("subscribers", count))
}

// Publish sends an update signal to every current subscriber without blocking
// and returns how many subscribers received it.
func (h *Hub) Publish(ctx context.Context) int {
	ev := Event{ID: uuid.New(), Topic: TopicUpdate, At: time.Now().UTC()}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0
	}
	delivered, dropped := 0, 0
	for ch := range h.subscribers {
		select {
		case ch <- ev:
			delivered++
		default:
			dropped++
		}
	}
	h.mu.Unlock()

	topic := metric.WithAttributes(attribute.String("topic", TopicUpdate))
	h.metrics.UpdateEventsPublished.Add(ctx, 1, topic)
	if dropped > 0 {
		h.metrics.UpdateEventsDropped.Add(ctx, int64(dropped), topic)
		h.logger.WarnContext(ctx, "Dropped update signal for slow subscribers", slog.Int("dropped", dropped))
	}
	h.logger.DebugContext(ctx, "Published update signal",
		slog.String("event_id", ev.ID.String()),
		slog.Int("delivered", delivered))
	return delivered
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close ends every subscription. Streams reading from the hub see their
// channel closed and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}
