package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fruitbox-be/internal/config"

	_ "github.com/lib/pq"
)

const (
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// NewDatabase opens the order store and checks that it answers.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	return newDatabaseWithDriver(ctx, cfg, "postgres")
}

func newDatabaseWithDriver(ctx context.Context, cfg config.DatabaseConfig, driverName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}
