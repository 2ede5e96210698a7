package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Collection names are interpolated into SQL as identifiers, so they
// are restricted to plain lowercase identifiers.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type DB struct {
	Pool  *pgxpool.Pool
	table string
}

// New connects to PostgreSQL and binds the store to the given
// collection (table). The pool is safe for concurrent use; no request
// ever mutates the index.
func New(ctx context.Context, connString string, collection string) (*DB, error) {
	if !identifierPattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{
		Pool:  pool,
		table: collection,
	}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
}
