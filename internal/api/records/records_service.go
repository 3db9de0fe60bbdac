package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-interests-api/app/observability/metrics"
	"github.com/FACorreiaa/go-interests-api/internal/notifier"
	"github.com/FACorreiaa/go-interests-api/internal/types"
)

const (
	cacheKeyAll          = "records:all"
	cacheKeyWithInterest = "records:with_interest"
)

var _ RecordsService = (*RecordsServiceImpl)(nil)

// RecordsService defines the business logic contract for records.
type RecordsService interface {
	ListAll(ctx context.Context) ([]types.Record, error)
	Create(ctx context.Context, req types.CreateRecordRequest) (types.RecordID, error)
	Search(ctx context.Context, term string) ([]types.Record, error)
	UpdateValue(ctx context.Context, id types.RecordID, value string) error
	ListWithInterest(ctx context.Context) ([]types.Record, error)
}

// RecordsServiceImpl validates input, fronts the list queries with a short
// TTL cache and publishes an update signal after every successful mutation.
type RecordsServiceImpl struct {
	logger    *slog.Logger
	repo      RecordsRepository
	publisher notifier.Publisher
	cache     *cache.Cache
	metrics   *metrics.AppMetrics

	// cacheMu orders cache fills against flushes. generation counts
	// mutations; a list loaded under an older generation is not stored.
	cacheMu    sync.Mutex
	generation uint64
}

// NewRecordsService creates a new records service. A cacheTTL of zero or less
// disables list caching.
func NewRecordsService(repo RecordsRepository, publisher notifier.Publisher, cacheTTL time.Duration, logger *slog.Logger) *RecordsServiceImpl {
	s := &RecordsServiceImpl{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics.Get(),
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

func (s *RecordsServiceImpl) cachedList(ctx context.Context, key string, load func(context.Context) ([]types.Record, error)) ([]types.Record, bool, error) {
	if s.cache == nil {
		records, err := load(ctx)
		return records, false, err
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]types.Record), true, nil
	}

	s.cacheMu.Lock()
	gen := s.generation
	s.cacheMu.Unlock()

	records, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	s.cacheMu.Lock()
	if s.generation == gen {
		s.cache.SetDefault(key, records)
	}
	s.cacheMu.Unlock()
	return records, false, nil
}

// afterMutation drops cached lists and tells subscribers something changed.
func (s *RecordsServiceImpl) afterMutation(ctx context.Context, kind string) {
	if s.cache != nil {
		s.cacheMu.Lock()
		s.generation++
		s.cache.Flush()
		s.cacheMu.Unlock()
	}
	s.metrics.RecordMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	delivered := s.publisher.Publish(ctx)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("notifier.delivered", delivered))
}

// ListAll returns every record.
func (s *RecordsServiceImpl) ListAll(ctx context.Context) ([]types.Record, error) {
	ctx, span := otel.Tracer("RecordsService").Start(ctx, "ListAll")
	defer span.End()

	l := s.logger.With(slog.String("method", "ListAll"))

	records, hit, err := s.cachedList(ctx, cacheKeyAll, s.repo.ListAll)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list records")
		return nil, fmt.Errorf("error listing records: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", hit))
	l.DebugContext(ctx, "Records listed", slog.Int("count", len(records)), slog.Bool("cache_hit", hit))
	span.SetStatus(codes.Ok, "Records listed")
	return records, nil
}

// Create validates and stores a new record, returning its id.
func (s *RecordsServiceImpl) Create(ctx context.Context, req types.CreateRecordRequest) (types.RecordID, error) {
	ctx, span := otel.Tracer("RecordsService").Start(ctx, "Create")
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"))

	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Rejected invalid record", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid record")
		return 0, err
	}

	id, err := s.repo.Create(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create record", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create record")
		return 0, fmt.Errorf("error creating record: %w", err)
	}

	s.afterMutation(ctx, "create")
	l.InfoContext(ctx, "Record created", slog.Int64("id", int64(id)))
	span.SetStatus(codes.Ok, "Record created")
	return id, nil
}

// Search returns the records whose name contains term.
func (s *RecordsServiceImpl) Search(ctx context.Context, term string) ([]types.Record, error) {
	ctx, span := otel.Tracer("RecordsService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("search.term", term),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	if term == "" {
		span.SetStatus(codes.Error, "Missing search term")
		return nil, fmt.Errorf("search term required: %w", types.ErrValidation)
	}

	records, err := s.repo.Search(ctx, term)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search records")
		return nil, fmt.Errorf("error searching records: %w", err)
	}

	span.SetStatus(codes.Ok, "Records searched")
	return records, nil
}

// UpdateValue sets the interest of an existing record. It is the single
// mutation path shared by both update routes.
func (s *RecordsServiceImpl) UpdateValue(ctx context.Context, id types.RecordID, value string) error {
	ctx, span := otel.Tracer("RecordsService").Start(ctx, "UpdateValue", trace.WithAttributes(
		attribute.Int64("record.id", int64(id)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateValue"), slog.Int64("id", int64(id)))

	if id <= 0 {
		span.SetStatus(codes.Error, "Invalid id")
		return fmt.Errorf("id required: %w", types.ErrValidation)
	}
	if err := types.ValidateInterest(value); err != nil {
		span.SetStatus(codes.Error, "Missing value")
		return err
	}

	if err := s.repo.UpdateValue(ctx, id, value); err != nil {
		l.ErrorContext(ctx, "Failed to update record value", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update record value")
		return fmt.Errorf("error updating record value: %w", err)
	}

	s.afterMutation(ctx, "update_value")
	l.InfoContext(ctx, "Record value updated")
	span.SetStatus(codes.Ok, "Record value updated")
	return nil
}

// ListWithInterest returns the records whose value is set.
func (s *RecordsServiceImpl) ListWithInterest(ctx context.Context) ([]types.Record, error) {
	ctx, span := otel.Tracer("RecordsService").Start(ctx, "ListWithInterest")
	defer span.End()

	l := s.logger.With(slog.String("method", "ListWithInterest"))

	records, hit, err := s.cachedList(ctx, cacheKeyWithInterest, s.repo.ListWithInterest)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list records with interest", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list records with interest")
		return nil, fmt.Errorf("error listing records with interest: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", hit))
	span.SetStatus(codes.Ok, "Records with interest listed")
	return records, nil
}
