package records

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-interests-api/app/observability/metrics"
	"github.com/FACorreiaa/go-interests-api/internal/notifier"
)

const (
	DefaultHeartbeat    = 15 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// EventsHandler streams update signals to clients as server-sent events.
type EventsHandler struct {
	hub          notifier.Subscriber
	heartbeat    time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	metrics      *metrics.AppMetrics
}

// NewEventsHandler creates the push endpoint. heartbeat is the keep-alive
// interval; writeTimeout bounds each write so a stalled client cannot pin
// the handler.
func NewEventsHandler(hub notifier.Subscriber, heartbeat, writeTimeout time.Duration, logger *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &EventsHandler{
		hub:          hub,
		heartbeat:    heartbeat,
		writeTimeout: writeTimeout,
		logger:       logger,
		metrics:      metrics.Get(),
	}
}

// Stream godoc
// @Summary      Update event stream
// @Description  Server-sent events: a ": keep-alive" comment every heartbeat and "data: update" after each mutation.
// @Tags         Events
// @Produce      text/event-stream
// @Success      200 {string} string "event stream"
// @Router       /events [get]
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventsHandler").Start(r.Context(), "Stream", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/events"),
	))
	defer span.End()

	if _, ok := w.(http.Flusher); !ok {
		span.SetStatus(codes.Error, "Streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	rc := http.NewResponseController(w)
	deadlinesSupported := true

	write := func(format string, args ...any) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				if !errors.Is(err, http.ErrNotSupported) {
					return err
				}
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Subscription and heartbeat ticker are released together, here only.
	events, unsubscribe := h.hub.Subscribe()
	ticker := time.NewTicker(h.heartbeat)
	h.metrics.StreamClientsActive.Add(ctx, 1)
	defer func() {
		ticker.Stop()
		unsubscribe()
		h.metrics.StreamClientsActive.Add(ctx, -1)
	}()

	l := h.logger.With(slog.String("handler", "Stream"), slog.String("remote_addr", r.RemoteAddr))
	l.InfoContext(ctx, "Event stream client connected")

	if err := write(": connected\n\n"); err != nil {
		l.DebugContext(ctx, "Initial write failed", slog.Any("error", err))
		return
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				l.InfoContext(ctx, "Notifier closed, ending event stream")
				span.SetStatus(codes.Ok, "Notifier closed")
				return
			}
			if err := write("id: %s\ndata: %s\n\n", ev.ID, ev.Topic); err != nil {
				h.logWriteError(l, r, err)
				return
			}

		case <-ticker.C:
			if err := write(": keep-alive\n\n"); err != nil {
				h.logWriteError(l, r, err)
				return
			}

		case <-ctx.Done():
			l.InfoContext(ctx, "Event stream client disconnected")
			span.SetStatus(codes.Ok, "Client disconnected")
			return
		}
	}
}

func (h *EventsHandler) logWriteError(l *slog.Logger, r *http.Request, err error) {
	if errors.Is(err, io.ErrClosedPipe) || r.Context().Err() != nil {
		l.DebugContext(r.Context(), "Event stream closed during write", slog.Any("error", err))
		return
	}
	l.WarnContext(r.Context(), "Event stream write failed", slog.Any("error", err))
}
