package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catalog-api/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open creates the shared connection pool. It is opened once at process
// start, injected into the repositories, and closed at shutdown.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Health pings the database and returns a status snapshot suitable for
// the health endpoint and boot logging
func Health(ctx context.Context, db *sql.DB) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stats := map[string]string{}

	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprintf("%d", poolStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", poolStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", poolStats.Idle)

	return stats
}
