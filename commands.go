package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/go-interests-api/app/db"
	appLogger "github.com/FACorreiaa/go-interests-api/app/logger"
	"github.com/FACorreiaa/go-interests-api/app/tracer"
	"github.com/FACorreiaa/go-interests-api/config"
	"github.com/FACorreiaa/go-interests-api/internal/container"
)

const serviceName = "go-interests-api"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "HTTP API over named records with a server-sent update stream",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd())
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// bootstrap loads .env and config and installs the default logger.
func bootstrap() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("initializing config: %w", err)
	}

	mode := cfg.Mode
	if env := os.Getenv("APP_ENV"); env != "" {
		mode = env
	}
	logger := appLogger.New(mode, os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply database migrations on startup")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
			if err != nil {
				return err
			}
			return database.RunMigrations(dbConfig.ConnectionURL, logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
			if err != nil {
				return err
			}
			return database.RollbackMigrations(dbConfig.ConnectionURL, steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func runServe(parent context.Context, skipMigrations bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	providers, err := tracer.InitTracingAndMetrics(serviceName)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.Any("error", err))
		return err
	}

	c, err := container.NewContainer(&cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if !skipMigrations {
		if err = c.RunMigrations(); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			return err
		}
	}

	if !c.WaitForDB(ctx) {
		return errors.New("database not ready after waiting")
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Mount("/", c.Router())

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	// No WriteTimeout: /events responses are long-lived and bound their own
	// writes with per-write deadlines.
	srv := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	var metricsSrv *http.Server
	if cfg.Handlers.Prometheus.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", providers.MetricsHandler)
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Ending the streams first lets Shutdown drain /events connections.
		c.Hub.Close()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		if err := providers.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	if err != nil {
		logger.Error("Server stopped with error", slog.Any("error", err))
		return err
	}
	logger.Info("Application shut down complete.")
	return nil
}
