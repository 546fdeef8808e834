package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sleepr_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type PostgresStore struct {
	connStr string
	db      *sqlx.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
	}
}

// IsPostgresURL reports whether a --config value points at PostgreSQL.
func IsPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// HasEmbeddedCredentials reports whether a URL-style connection string carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	if !IsPostgresURL(connStr) {
		return strings.Contains(connStr, "password=")
	}
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}

func (s *PostgresStore) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() error {
	return s.open()
}

func (s *PostgresStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sqlx.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *PostgresStore) Get(key string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("storage not loaded")
	}
	var value string
	err := s.db.Get(&value, "SELECT value FROM sleepr_settings WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *PostgresStore) Set(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	_, err := s.db.Exec(`
		INSERT INTO sleepr_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (s *PostgresStore) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	_, err := s.db.Exec("DELETE FROM sleepr_settings WHERE key = $1", key)
	return err
}

func (s *PostgresStore) Keys() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	var keys []string
	if err := s.db.Select(&keys, "SELECT key FROM sleepr_settings ORDER BY key"); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetConfigPath returns the connection string with any password redacted.
func (s *PostgresStore) GetConfigPath() string {
	if u, err := url.Parse(s.connStr); err == nil && u.User != nil {
		return u.Redacted()
	}
	return s.connStr
}
