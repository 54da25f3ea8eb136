package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// New opens a database/sql handle; used by the one-off tooling.
func New(url string) (*sql.DB, error) {
	return sql.Open("postgres", url)
}

// NewPool opens the pgx pool the ingestion pipeline writes through.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, url)
}
