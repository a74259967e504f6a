package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresSpentStore implements SpentStore with PostgreSQL persistence.
type PostgresSpentStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresSpentStore creates a new PostgreSQL-backed spent store from a
// connection string (lib/pq DSN or URL form).
func NewPostgresSpentStore(dsn string) (*PostgresSpentStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresSpentStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresSpentStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spent_secrets (
		secret_hash VARCHAR(64) PRIMARY KEY,
		spent_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_spent_secrets_time ON spent_secrets(spent_at);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// MarkSpent records the secret as spent. The insert's conflict clause makes
// the first writer win; any later attempt sees zero rows affected and gets
// ErrAlreadySpent.
func (s *PostgresSpentStore) MarkSpent(ctx context.Context, secret []byte) error {
	query := `
	INSERT INTO spent_secrets (secret_hash)
	VALUES ($1)
	ON CONFLICT (secret_hash) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query, secretKey(secret))
	if err != nil {
		return fmt.Errorf("marking secret spent: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking secret spent: %w", err)
	}
	if rows == 0 {
		return ErrAlreadySpent
	}
	return nil
}

// IsSpent reports whether the secret has been spent.
func (s *PostgresSpentStore) IsSpent(ctx context.Context, secret []byte) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM spent_secrets WHERE secret_hash = $1)`

	if err := s.db.QueryRowContext(ctx, query, secretKey(secret)).Scan(&exists); err != nil {
		return false, fmt.Errorf("querying spent secret: %w", err)
	}
	return exists, nil
}

// Close releases the underlying database handle.
func (s *PostgresSpentStore) Close() error {
	return s.db.Close()
}
