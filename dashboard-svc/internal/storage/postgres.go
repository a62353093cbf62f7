package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const tokenKey = "token"

// PostgresTokenStore keeps the token as the single "token" row of a
// key/value table shared by dashboard instances.
type PostgresTokenStore struct {
	db    *sql.DB
	table string
}

func NewPostgresTokenStore(db *sql.DB, table string) *PostgresTokenStore {
	return &PostgresTokenStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *PostgresTokenStore) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
	}
	return nil
}

func (s *PostgresTokenStore) Set(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, s.table), tokenKey, token)
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *PostgresTokenStore) Get(ctx context.Context) (string, bool, error) {
	var token string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key = $1", s.table), tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (s *PostgresTokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = $1", s.table), tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
