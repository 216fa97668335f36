package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

// Disk stores one file per key under a base directory
type Disk struct {
	d *diskv.Diskv
}

// NewDisk creates a disk store rooted at dir. A leading "~" is expanded to
// the user's home directory.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("disk store requires a directory")
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand store dir: %w", err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	return &Disk{d: diskv.New(diskv.Options{
		BasePath:     expanded,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

// BasePath returns the directory files are written to
func (s *Disk) BasePath() string {
	return s.d.BasePath
}

// Get reads the value stored under key
func (s *Disk) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	v, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// Put writes value under key
func (s *Disk) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.d.Write(key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete erases key
func (s *Disk) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to erase %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key, sorted
func (s *Disk) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	for key := range s.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; every Put is already on disk
func (s *Disk) Close() error {
	return nil
}
