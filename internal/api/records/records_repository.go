package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-interests-api/app/db"
	"github.com/FACorreiaa/go-interests-api/app/observability/metrics"
	"github.com/FACorreiaa/go-interests-api/internal/types"
)

const recordsTable = "random_names_with_id"

var _ RecordsRepository = (*PostgresRecordsRepo)(nil)

// RecordsRepository defines the contract for record persistence.
type RecordsRepository interface {
	ListAll(ctx context.Context) ([]types.Record, error)
	Create(ctx context.Context, req types.CreateRecordRequest) (types.RecordID, error)
	Search(ctx context.Context, term string) ([]types.Record, error)
	// UpdateValue returns types.ErrNotFound when no row has the given id.
	UpdateValue(ctx context.Context, id types.RecordID, value string) error
	ListWithInterest(ctx context.Context) ([]types.Record, error)
}

type PostgresRecordsRepo struct {
	logger                *slog.Logger
	pgpool                database.Querier
	metrics               *metrics.AppMetrics
	searchCaseInsensitive bool
}

// NewPostgresRecordsRepo creates a repository over a pool (or any Querier).
// With searchCaseInsensitive the search uses ILIKE; otherwise matching
// follows the column collation, which is case sensitive in Postgres.
func NewPostgresRecordsRepo(pgpool database.Querier, searchCaseInsensitive bool, logger *slog.Logger) *PostgresRecordsRepo {
	return &PostgresRecordsRepo{
		logger:                logger,
		pgpool:                pgpool,
		metrics:               metrics.Get(),
		searchCaseInsensitive: searchCaseInsensitive,
	}
}

func (r *PostgresRecordsRepo) startSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return otel.Tracer("RecordsRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", recordsTable),
	))
}

func (r *PostgresRecordsRepo) observe(ctx context.Context, operation string, start time.Time, err error) {
	op := metric.WithAttributes(attribute.String("operation", operation))
	r.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), op)
	if err != nil {
		r.metrics.DbQueryErrorsTotal.Add(ctx, 1, op)
	}
}

// ListAll implements RecordsRepository.
func (r *PostgresRecordsRepo) ListAll(ctx context.Context) ([]types.Record, error) {
	ctx, span := r.startSpan(ctx, "ListAll", "SELECT")
	defer span.End()

	l := r.logger.With(slog.String("method", "ListAll"))
	l.DebugContext(ctx, "Fetching all records")

	query := `
        SELECT id, name, division, location, value
        FROM random_names_with_id
        ORDER BY id`

	records, err := r.queryRecords(ctx, "list_all", query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching records: %w", err)
	}

	l.DebugContext(ctx, "Fetched all records", slog.Int("count", len(records)))
	span.SetStatus(codes.Ok, "Records fetched")
	return records, nil
}

// Create implements RecordsRepository.
func (r *PostgresRecordsRepo) Create(ctx context.Context, req types.CreateRecordRequest) (types.RecordID, error) {
	ctx, span := r.startSpan(ctx, "Create", "INSERT")
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"))
	l.DebugContext(ctx, "Inserting record")

	// An empty value is stored as NULL so the record has no interest yet.
	var value *string
	if req.Value != nil && *req.Value != "" {
		value = req.Value
	}

	query := `
        INSERT INTO random_names_with_id (name, division, location, value)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	start := time.Now()
	var id int64
	err := r.pgpool.QueryRow(ctx, query, req.Name, req.Division, req.Location, value).Scan(&id)
	r.observe(ctx, "create", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert record", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return 0, fmt.Errorf("database error adding record: %w", err)
	}

	span.SetAttributes(attribute.Int64("record.id", id))
	l.InfoContext(ctx, "Record created", slog.Int64("id", id))
	span.SetStatus(codes.Ok, "Record created")
	return types.RecordID(id), nil
}

// Search implements RecordsRepository. The term is matched as a literal
// substring of name.
func (r *PostgresRecordsRepo) Search(ctx context.Context, term string) ([]types.Record, error) {
	ctx, span := r.startSpan(ctx, "Search", "SELECT")
	defer span.End()

	l := r.logger.With(slog.String("method", "Search"))
	l.DebugContext(ctx, "Searching records", slog.String("term", term))

	op := "LIKE"
	if r.searchCaseInsensitive {
		op = "ILIKE"
	}
	query := `
        SELECT id, name, division, location, value
        FROM random_names_with_id
        WHERE name ` + op + ` $1 ESCAPE '\'
        ORDER BY id`

	records, err := r.queryRecords(ctx, "search", query, likePattern(term))
	if err != nil {
		l.ErrorContext(ctx, "Failed to search records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error searching records: %w", err)
	}

	l.DebugContext(ctx, "Searched records", slog.Int("count", len(records)))
	span.SetStatus(codes.Ok, "Records searched")
	return records, nil
}

// UpdateValue implements RecordsRepository.
func (r *PostgresRecordsRepo) UpdateValue(ctx context.Context, id types.RecordID, value string) error {
	ctx, span := r.startSpan(ctx, "UpdateValue", "UPDATE")
	defer span.End()
	span.SetAttributes(attribute.Int64("record.id", int64(id)))

	l := r.logger.With(slog.String("method", "UpdateValue"), slog.Int64("id", int64(id)))
	l.DebugContext(ctx, "Updating record value")

	query := "UPDATE random_names_with_id SET value = $1 WHERE id = $2"

	start := time.Now()
	tag, err := r.pgpool.Exec(ctx, query, value, int64(id))
	r.observe(ctx, "update_value", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update record value", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error updating record value: %w", err)
	}

	if tag.RowsAffected() == 0 {
		l.WarnContext(ctx, "Attempted to update non-existent record")
		span.SetStatus(codes.Error, "Record not found")
		return fmt.Errorf("record %d not found: %w", id, types.ErrNotFound)
	}

	l.InfoContext(ctx, "Record value updated")
	span.SetStatus(codes.Ok, "Record value updated")
	return nil
}

// ListWithInterest implements RecordsRepository.
func (r *PostgresRecordsRepo) ListWithInterest(ctx context.Context) ([]types.Record, error) {
	ctx, span := r.startSpan(ctx, "ListWithInterest", "SELECT")
	defer span.End()

	l := r.logger.With(slog.String("method", "ListWithInterest"))
	l.DebugContext(ctx, "Fetching records with an interest")

	query := `
        SELECT id, name, division, location, value
        FROM random_names_with_id
        WHERE value IS NOT NULL
        ORDER BY id`

	records, err := r.queryRecords(ctx, "list_with_interest", query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch records with interest", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching records with interest: %w", err)
	}

	l.DebugContext(ctx, "Fetched records with interest", slog.Int("count", len(records)))
	span.SetStatus(codes.Ok, "Records with interest fetched")
	return records, nil
}

// queryRecords runs a record SELECT and always returns a non-nil slice on success.
func (r *PostgresRecordsRepo) queryRecords(ctx context.Context, operation, query string, args ...any) (records []types.Record, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, operation, start, err) }()

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]types.Record, error) {
	records := make([]types.Record, 0)
	for rows.Next() {
		var (
			rec   types.Record
			id    int64
			value pgtype.Text
		)
		if err := rows.Scan(&id, &rec.Name, &rec.Division, &rec.Location, &value); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		rec.ID = types.RecordID(id)
		if value.Valid {
			v := value.String
			rec.Value = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading record rows: %w", err)
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
