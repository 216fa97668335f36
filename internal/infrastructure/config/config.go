package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
	Status    StatusConfig
	Window    WindowConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Address returns the listen address
func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds the origins allowed to drive the desktop.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Storage drivers
const (
	StoreMemory = "memory"
	StoreDisk   = "disk"
	StoreSQLite = "sqlite"
)

// StorageConfig selects where preferences persist.
type StorageConfig struct {
	Driver     string `envconfig:"STORE_DRIVER" default:"disk"`
	Dir        string `envconfig:"STORE_DIR" default:"~/.gmlportal/preferences"`
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"~/.gmlportal/portal.db"`
}

// CatalogConfig holds the app catalog source. An empty file means the
// built-in catalog.
type CatalogConfig struct {
	File  string `envconfig:"CATALOG_FILE"`
	Watch bool   `envconfig:"CATALOG_WATCH" default:"true"`
}

// StatusConfig tunes reachability probing.
type StatusConfig struct {
	ProbeTimeout time.Duration `envconfig:"STATUS_PROBE_TIMEOUT" default:"6s"`
	ProbeRPS     float64       `envconfig:"STATUS_PROBE_RPS" default:"10"`
	ProbeRetries int           `envconfig:"STATUS_PROBE_RETRIES" default:"1"`
}

// WindowConfig overrides window placement margins.
type WindowConfig struct {
	TopMargin         int `envconfig:"WM_TOP_MARGIN" default:"32"`
	DockMargin        int `envconfig:"WM_DOCK_MARGIN" default:"96"`
	CompactBreakpoint int `envconfig:"WM_COMPACT_BREAKPOINT" default:"768"`
}

// Load reads the given .env files (missing ones are skipped, and variables
// already set win), then the environment. Paths starting with "~" are
// expanded and the result is validated.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize expands "~" in paths and validates the result. Call it again
// after overriding fields loaded by Load.
func (c *Config) Finalize() error {
	if err := c.expandPaths(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver:     StoreDisk,
			Dir:        "~/.gmlportal/preferences",
			SQLitePath: "~/.gmlportal/portal.db",
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
		Status: StatusConfig{
			ProbeTimeout: 6 * time.Second,
			ProbeRPS:     10,
			ProbeRetries: 1,
		},
		Window: WindowConfig{
			TopMargin:         32,
			DockMargin:        96,
			CompactBreakpoint: 768,
		},
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.RateLimit),
		validation.Field(&c.Storage),
		validation.Field(&c.Status),
		validation.Field(&c.Window),
	)
}

// Validate validates the server configuration.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// Validate validates the logging configuration.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate validates the rate limit configuration.
func (c RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.RequestsPerSecond, validation.Required, validation.Min(1)),
		validation.Field(&c.Burst, validation.Required, validation.Min(1)),
	)
}

// Validate validates the storage configuration.
func (c StorageConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreMemory, StoreDisk, StoreSQLite)),
		validation.Field(&c.Dir, validation.When(c.Driver == StoreDisk, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == StoreSQLite, validation.Required)),
	)
}

// Validate validates the status configuration.
func (c StatusConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ProbeTimeout, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.ProbeRPS, validation.Min(0.0)),
		validation.Field(&c.ProbeRetries, validation.Min(0), validation.Max(5)),
	)
}

// Validate validates the window placement configuration.
func (c WindowConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TopMargin, validation.Min(0)),
		validation.Field(&c.DockMargin, validation.Min(0)),
		validation.Field(&c.CompactBreakpoint, validation.Min(0)),
	)
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Storage.Dir, &c.Storage.SQLitePath, &c.Catalog.File} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}
