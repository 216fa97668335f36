package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get for a key that was never written
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for keys that cannot be stored
	ErrInvalidKey = errors.New("invalid key")
)

// Drivers
const (
	DriverMemory = "memory"
	DriverDisk   = "disk"
	DriverSQLite = "sqlite"
)

// Store is a flat key/value store holding serialized preference values
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Driver     string
	Dir        string
	SQLitePath string
}

// Open creates the store named by cfg.Driver
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverDisk:
		return NewDisk(cfg.Dir)
	case DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// validateKey rejects keys that would escape a flat namespace on disk
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
