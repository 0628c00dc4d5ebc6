package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/distlock"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	lockKey = "schema-migrate"
	lockTTL = 5 * time.Minute
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file")
	dir := flag.String("dir", "migrations", "directory of .sql files")
	createDB := flag.Bool("create-db", false, "create the configured database first")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Logging.Level), !cfg.Logging.ExposePII)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *createDB {
		if err := createDatabase(ctx, cfg.Database); err != nil {
			log.Error("Create database failed", "error", err)
			os.Exit(1)
		}
		log.Info("Database created", "database", cfg.Database.DatabaseName)
	}

	if err := migrate(ctx, cfg, *dir, log); err != nil {
		log.Error("Migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("Migrations complete")
}

func migrate(ctx context.Context, cfg *config.Config, dir string, log *logger.Logger) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	lockCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	lock := distlock.New(rdb, db, lockKey, lockTTL)
	return distlock.Run(lockCtx, lock, time.Second, func(ctx context.Context) error {
		return applyAll(ctx, db, lock, files, log)
	})
}

// applyAll runs files in order while holding lock. Expiring locks are
// refreshed before each file so a slow migration cannot outlive the TTL.
func applyAll(ctx context.Context, db *sql.DB, lock distlock.Lock, files []string, log *logger.Logger) error {
	for _, path := range files {
		if ext, ok := lock.(distlock.Extender); ok {
			if err := ext.Extend(ctx, lockTTL); err != nil {
				return fmt.Errorf("before %s: %w", filepath.Base(path), err)
			}
		}
		if err := applyFile(ctx, db, path); err != nil {
			return err
		}
		log.Info("Applied migration", "file", filepath.Base(path))
	}
	return nil
}

// migrationFiles lists *.sql in dir in lexical order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyFile(ctx context.Context, db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply %s: %w", path, err)
	}
	return tx.Commit()
}

// createDatabase connects to the server's default database and creates the
// configured one if it is missing.
func createDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := sql.Open("postgres", cfg.ConnectionStringWithoutDB())
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DatabaseName,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(cfg.DatabaseName)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}
