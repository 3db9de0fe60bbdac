package container

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-interests-api/app/db"
	"github.com/FACorreiaa/go-interests-api/config"
	"github.com/FACorreiaa/go-interests-api/internal/api/records"
	"github.com/FACorreiaa/go-interests-api/internal/notifier"
	"github.com/FACorreiaa/go-interests-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	DBConfig       *database.DatabaseConfig
	Pool           *pgxpool.Pool
	Hub            *notifier.Hub
	RecordsHandler *records.HandlerImpl
	EventsHandler  *records.EventsHandler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	hub := notifier.NewHub(cfg.Events.SubscriberBuffer, logger.With(slog.String("component", "notifier")))

	recordsRepo := records.NewPostgresRecordsRepo(pool, cfg.Records.SearchCaseInsensitive, logger)
	recordsService := records.NewRecordsService(recordsRepo, hub, cfg.Records.CacheTTL, logger)
	recordsHandler := records.NewHandlerImpl(recordsService, logger)
	eventsHandler := records.NewEventsHandler(hub, cfg.Events.Heartbeat, cfg.Events.WriteTimeout, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		DBConfig:       dbConfig,
		Pool:           pool,
		Hub:            hub,
		RecordsHandler: recordsHandler,
		EventsHandler:  eventsHandler,
	}, nil
}

// Router builds the application routes from the container's handlers.
func (c *Container) Router() chi.Router {
	return router.SetupRouter(&router.Config{
		RecordsHandler: c.RecordsHandler,
		EventsHandler:  c.EventsHandler,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		RequestTimeout: c.Config.Server.Timeout,
	})
}

// Close ends event streams and releases the pool.
func (c *Container) Close() {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations() error {
	return database.RunMigrations(c.DBConfig.ConnectionURL, c.Logger)
}
