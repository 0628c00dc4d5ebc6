package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/mailing"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := "config/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.New(os.Stderr, logger.ERROR, true).Error("Failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Logging.Level), !cfg.Logging.ExposePII)
	if err := run(cfg, log); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connections are opened lazily; the server starts even if Postgres
	// is not up yet and /health/ready reports it.
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	redisClient := openRedis(ctx, cfg.Redis.URL, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sender, err := mailing.NewSender(ctx, cfg.EmailClient)
	if err != nil {
		return err
	}
	notifier := mailing.Instrument(sender, cfg.EmailClient.Provider, m)
	log.Info("Email client configured", "provider", cfg.EmailClient.Provider, "sender_email", cfg.EmailClient.SenderEmail)

	svc := subscription.NewService(
		postgres.NewSubscriptionRepo(db),
		subscription.WithInsertTimeout(cfg.Database.QueryTimeout()),
	)

	server := api.NewServer(api.Options{
		Subscriptions:  svc,
		Notifier:       notifier,
		DB:             db,
		Redis:          redisClient,
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		log.Info("Starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// openRedis returns nil when url is empty or Redis does not answer; Redis is
// only used for readiness reporting here.
func openRedis(ctx context.Context, url string, log *logger.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Invalid REDIS_URL, Redis disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis connection failed, Redis disabled", "error", err)
		client.Close()
		return nil
	}
	return client
}
