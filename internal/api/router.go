// Package api serves the habmon HTTP API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/habmon/habmon/internal/api/handlers"
	mw "github.com/habmon/habmon/internal/api/middleware"
	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/metrics"
	"github.com/habmon/habmon/internal/realtime"
)

// Dependencies are the collaborators NewRouter wires into handlers.
type Dependencies struct {
	Resources handlers.ResourceService
	Hub       *realtime.Hub
	DB        handlers.Pinger
	Metrics   *metrics.Metrics
	Server    config.ServerConfig
	Logger    *slog.Logger
}

// NewRouter builds the middleware chain and every API route.
func NewRouter(dep Dependencies) http.Handler {
	logger := dep.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery(logger))
	r.Use(mw.Logging(logger))
	r.Use(mw.CORS(dep.Server.CORSOrigin))
	r.Use(mw.RateLimit(dep.Server.RateLimitRPS, dep.Server.RateLimitBurst))
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler(dep.DB, logger)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Method(http.MethodGet, "/metrics", dep.Metrics.Handler())

	rh := handlers.NewResourcesHandler(dep.Resources, logger)
	sh := handlers.NewStreamHandler(dep.Hub, dep.Resources, dep.Server.StreamHeartbeat.Duration, logger)

	r.Route("/api/resources", func(rr chi.Router) {
		rr.Get("/", rh.List)
		rr.Post("/", rh.Create)
		rr.Get("/stats", rh.Stats)
		rr.Get("/stream", sh.Stream)
		rr.Get("/id/{id}", rh.GetByID)
		rr.Get("/kinds", rh.Kinds)
		rr.Patch("/population/update", rh.UpdatePopulation)
		rr.Get("/population/history", rh.PopulationLog)

		rr.Route("/{code}", func(cr chi.Router) {
			cr.Get("/", rh.Get)
			cr.Patch("/", rh.Update)
			cr.Delete("/", rh.Delete)
			cr.Get("/history", rh.History)
		})
	})

	return r
}

// NewServer wraps handler in an http.Server with conservative timeouts.
// WriteTimeout is left unset so event streams stay open.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
