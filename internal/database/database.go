package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"registration-service/internal/config"
	"registration-service/migrations"
)

// Connect opens and pings a pool for the configured driver.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite3" && strings.Contains(cfg.URL(), ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(10)
		db.SetMaxOpenConns(50)
		db.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Migrate applies every pending migration for the driver db was opened with.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var dialect goose.Dialect
	switch db.DriverName() {
	case "pgx":
		dialect = goose.DialectPostgres
	case "sqlite3":
		dialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	fsys, err := fs.Sub(migrations.FS, db.DriverName())
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", db.DriverName(), err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose: failed to run migrations: %w", err)
	}

	for _, r := range results {
		slog.InfoContext(ctx, "Migration applied", "source", r.Source.Path, "duration", r.Duration)
	}

	return nil
}
