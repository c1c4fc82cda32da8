package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netclass-console/internal/config"

	_ "github.com/lib/pq"
)

// InitDB initializes the database connection with proper configuration
func InitDB(cfg *config.Config) (*sql.DB, error) {
	return Open(cfg.GetDatabaseDSN(), cfg.Database)
}

// Open connects to PostgreSQL using an explicit DSN and applies pool settings
func Open(dsn string, pool config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
