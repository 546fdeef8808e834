package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/sleepr/internal/keyring"
	"github.com/julianstephens/sleepr/internal/logger"
)

// EnvDBConnection overrides the PostgreSQL connection string.
const EnvDBConnection = "SLEEPR_DB_CONNECTION"

var (
	// ErrEmbeddedCredentials rejects PostgreSQL URLs carrying a password.
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")

	getConnectionStringFunc = keyring.GetConnectionString
)

// Open picks a Provider for the --config value:
// "memory" or ":memory:" for an in-process store, a postgres:// URL (or "postgres" to use the
// keyring / environment), a *.json path, or otherwise a SQLite file path.
func Open(config string) (Provider, error) {
	switch {
	case config == "memory" || config == ":memory:":
		return NewMemoryStore(), nil
	case config == "postgres":
		connStr, err := resolveConnectionString()
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(connStr), nil
	case IsPostgresURL(config):
		if HasEmbeddedCredentials(config) {
			return nil, fmt.Errorf("%w: use the OS keyring, %s, or a .pgpass file", ErrEmbeddedCredentials, EnvDBConnection)
		}
		return NewPostgresStore(config), nil
	case strings.HasSuffix(config, ".json"):
		return NewJSONStore(config), nil
	default:
		return NewSQLiteStore(config), nil
	}
}

func resolveConnectionString() (string, error) {
	if env := os.Getenv(EnvDBConnection); env != "" {
		return env, nil
	}
	connStr, err := getConnectionStringFunc()
	if err != nil {
		logger.Warn("No PostgreSQL connection string available", "error", err)
		return "", fmt.Errorf("no PostgreSQL connection string: set %s or store one in the OS keyring: %w", EnvDBConnection, err)
	}
	return connStr, nil
}
