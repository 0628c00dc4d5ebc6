// Package api exposes the subscription intake over HTTP.
package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/mailing"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Subscriber is the intake pipeline the handler drives.
type Subscriber interface {
	Subscribe(ctx context.Context, form subscription.Form) (domain.Subscription, error)
}

// Options carries the collaborators the server is built from. DB and Redis
// are only used by the readiness probe and may be nil.
type Options struct {
	Subscriptions  Subscriber
	Notifier       mailing.Sender
	DB             *sql.DB
	Redis          *redis.Client
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// Server represents the API server
type Server struct {
	subscriptions Subscriber
	// notifier is held for the confirmation flow; no handler calls it yet.
	notifier mailing.Sender
	health   *HealthChecker
	log      *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		subscriptions: opts.Subscriptions,
		notifier:      opts.Notifier,
		health:        NewHealthChecker(opts.DB, opts.Redis),
		log:           log,
		metrics:       opts.Metrics,
		gatherer:      gatherer,
	}
	s.router = s.routes(opts.AllowedOrigins)
	return s
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.router
}
