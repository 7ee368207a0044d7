// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"facility-map/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// OpenAll opens one client per configured data source, keyed like cfg.DataSources.
// Already opened clients are closed when a later one fails.
func OpenAll(sources map[string]config.PostgresConfig) (map[string]*PostgresClient, error) {
	clients := make(map[string]*PostgresClient, len(sources))
	for id, ds := range sources {
		client, err := NewPostgres(ds)
		if err != nil {
			CloseAll(clients)
			return nil, fmt.Errorf("data source %s: %w", id, err)
		}
		clients[id] = client
	}
	return clients, nil
}

// CloseAll closes every client, ignoring errors.
func CloseAll(clients map[string]*PostgresClient) {
	for _, c := range clients {
		_ = c.Close()
	}
}
