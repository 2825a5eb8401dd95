package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/logger"
	"estate-assistant/internal/common/observability"
)

// ContextSource builds an assistant context string for an inventory.
type ContextSource interface {
	ContextFor(ctx context.Context, inventoryID string) (string, error)
}

// Check is a named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Options struct {
	Config        config.ServerConfig
	Engine        *assistant.Engine
	Inventory     ContextSource
	Checks        []Check
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	router     *chi.Mux
	engine     *assistant.Engine
	inventory  ContextSource
	checks     []Check
	obs        *observability.Observability
	logger     logger.Logger
	httpServer *http.Server
}

func New(opts Options) *Server {
	obs := opts.Observability
	if obs == nil {
		obs = observability.Noop()
	}

	s := &Server{
		router:    chi.NewRouter(),
		engine:    opts.Engine,
		inventory: opts.Inventory,
		checks:    opts.Checks,
		obs:       obs,
		logger:    opts.Logger.With(map[string]interface{}{"component": "http"}),
	}

	origins := opts.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestID)
	s.router.Use(s.instrument)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	s.routes()

	s.httpServer = &http.Server{
		Addr:         opts.Config.Address,
		Handler:      s.router,
		ReadTimeout:  durationOr(opts.Config.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(opts.Config.WriteTimeout, 30*time.Second),
	}
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/ai", func(r chi.Router) {
		r.Post("/", s.handleGenerate)
		r.Get("/providers", s.handleProviders)
		r.Put("/provider", s.handleSetProvider)
	})
}

func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func durationOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return config.GetDuration(ms)
}
