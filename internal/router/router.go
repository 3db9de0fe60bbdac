package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-interests-api/docs"
	"github.com/FACorreiaa/go-interests-api/internal/api/records"
)

// Config contains dependencies needed for the router setup
type Config struct {
	RecordsHandler *records.HandlerImpl
	EventsHandler  *records.EventsHandler
	AllowedOrigins []string
	// RequestTimeout bounds the JSON routes only; the event stream is long-lived.
	RequestTimeout time.Duration
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request id, logger, recoverer) is applied in the
// serve command before mounting this router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.Compress(5, "application/json"))

		r.Get("/users", cfg.RecordsHandler.ListUsers)
		r.Post("/update-user-value", cfg.RecordsHandler.CreateUser)
		r.Get("/search-users", cfg.RecordsHandler.SearchUsers)
		r.Patch("/users/{id}", cfg.RecordsHandler.UpdateUserValue)
		r.Post("/update-interest", cfg.RecordsHandler.UpdateInterest)
		r.Get("/users-with-interest", cfg.RecordsHandler.ListUsersWithInterest)
	})

	r.Get("/events", cfg.EventsHandler.Stream)

	return r
}
