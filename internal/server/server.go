// Package server exposes the service over a JSON REST API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/pokrok/internal/cache"
	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/metrics"
	"github.com/julianstephens/pokrok/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	svc      *service.Service
	cache    cache.Cache
	cacheTTL time.Duration
	validate *validator.Validate
}

type Option func(*Server)

// WithCache replaces the default in-memory response cache.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		cache:    cache.NewMemory(),
		cacheTTL: constants.DefaultCacheTTL,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cacheResponses(s.cache, s.cacheTTL))

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.handleListHabits)
			r.Post("/", s.handleCreateHabit)
			r.Post("/calendar", s.handleHabitCalendar)
			r.Put("/{id}", s.handleUpdateHabit)
			r.Delete("/{id}", s.handleDeleteHabit)
			r.Get("/{id}/stats", s.handleHabitStats)
		})
		r.Route("/daily-steps", func(r chi.Router) {
			r.Get("/", s.handleListSteps)
			r.Post("/", s.handleCreateStep)
			r.Put("/{id}", s.handleUpdateStep)
			r.Delete("/{id}", s.handleDeleteStep)
			r.Post("/{id}/complete", s.handleCompleteStep)
			r.Get("/{id}/next", s.handleNextOccurrence)
		})
		r.Route("/cesta/areas", func(r chi.Router) {
			r.Get("/", s.handleListAreas)
			r.Post("/", s.handleCreateArea)
			r.Put("/{id}", s.handleUpdateArea)
			r.Delete("/{id}", s.handleDeleteArea)
		})
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Put("/{id}", s.handleUpdateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
		})
		r.Get("/agenda", s.handleAgenda)
		r.Get("/workflows/pending", s.handlePendingWorkflows)
		r.Post("/workflows/daily-review", s.handleDailyReview)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store().Ping(); err != nil {
		logger.Warn("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "storage": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}
