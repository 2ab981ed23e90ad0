package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	position   INTEGER     NOT NULL,
	data       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
)`

// PostgresStore stores one collection as rows of the documents table
type PostgresStore[T any] struct {
	db         *sql.DB
	collection string
	idOf       IDFunc[T]
}

func NewPostgresStore[T any](db *sql.DB, collection string, idOf IDFunc[T]) *PostgresStore[T] {
	return &PostgresStore[T]{
		db:         db,
		collection: collection,
		idOf:       idOf,
	}
}

// Load returns the collection ordered by insertion position
func (ps *PostgresStore[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := ps.db.QueryContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 ORDER BY position ASC`,
		ps.collection,
	)
	if err != nil {
		return nil, errUnavailable("load "+ps.collection, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errUnavailable("scan "+ps.collection, err)
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", ps.collection, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errUnavailable("load "+ps.collection, err)
	}
	return items, nil
}

// Save replaces the collection inside a single transaction
func (ps *PostgresStore[T]) Save(ctx context.Context, items []T) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return errUnavailable("begin "+ps.collection, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, ps.collection); err != nil {
		return errUnavailable("clear "+ps.collection, err)
	}

	now := time.Now()
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %s document: %w", ps.collection, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, position, data, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			ps.collection,
			ps.idOf(item),
			i,
			data,
			now,
		)
		if err != nil {
			return errUnavailable("insert "+ps.collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errUnavailable("commit "+ps.collection, err)
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// EnsureSchema creates the documents table if it does not exist
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}
