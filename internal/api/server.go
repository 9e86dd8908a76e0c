package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	backlogapi "github.com/vishkar/storycrafter/internal/api/backlog"
	"github.com/vishkar/storycrafter/internal/api/middleware"
)

// Generation calls fan out to provider APIs, so the request timeout has to
// cover a full planning-plus-expansion run.
const requestTimeout = 10 * time.Minute

// SetupRouter creates and configures the HTTP router
func SetupRouter(backlogHandler *backlogapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Register routes
	backlogapi.RegisterRoutes(r, backlogHandler)

	return r
}
