package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/sleepr/internal/keyring"
	"github.com/julianstephens/sleepr/internal/storage"
)

// KeyringCmd manages the PostgreSQL connection string kept in the OS keyring.
type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Show keyring availability." default:"1"`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"postgres:// connection string (a password is allowed here)."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if !storage.IsPostgresURL(c.ConnectionString) {
		return fmt.Errorf("not a PostgreSQL connection string")
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	fmt.Println("✓ Connection string stored. Use '--config postgres' to connect with it.")
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No connection string stored.")
			return nil
		}
		return err
	}
	fmt.Println("✓ Connection string removed")
	return nil
}

type KeyringStatusCmd struct{}

func (c *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring: unavailable")
		return nil
	}
	fmt.Println("✓ OS keyring: available")
	if _, err := keyring.GetConnectionString(); err == nil {
		fmt.Println("✓ Connection string: stored")
	} else {
		fmt.Println("○ Connection string: not stored")
	}
	if _, err := keyring.GetPaywallAPIKey(); err == nil {
		fmt.Println("✓ Subscription API key: stored")
	} else {
		fmt.Println("○ Subscription API key: not stored")
	}
	return nil
}
