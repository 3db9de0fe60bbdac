package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
	RecordMutationsTotal   metric.Int64Counter
	UpdateEventsPublished  metric.Int64Counter
	UpdateEventsDropped    metric.Int64Counter
	StreamClientsActive    metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// Instruments come from the global MeterProvider; the otel global delegate
// forwards them to a provider installed later by tracer.InitTracingAndMetrics.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-interests-api")
		var err error
		m := &AppMetrics{}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		m.RecordMutationsTotal, err = meter.Int64Counter(
			"record_mutations_total",
			metric.WithDescription("Total number of successful record creates and value updates"),
			metric.WithUnit("{mutation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create record_mutations_total: %v", err)
		}

		m.UpdateEventsPublished, err = meter.Int64Counter(
			"update_events_published_total",
			metric.WithDescription("Total number of update signals published to the notifier"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create update_events_published_total: %v", err)
		}

		m.UpdateEventsDropped, err = meter.Int64Counter(
			"update_events_dropped_total",
			metric.WithDescription("Update signals dropped because a subscriber buffer was full"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create update_events_dropped_total: %v", err)
		}

		m.StreamClientsActive, err = meter.Int64UpDownCounter(
			"event_stream_clients_active",
			metric.WithDescription("Number of connected event stream clients"),
			metric.WithUnit("{client}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create event_stream_clients_active: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
