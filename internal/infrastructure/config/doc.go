// Package config provides 12-factor configuration for the portal backend.
//
// Values come from environment variables with defaults. Optional .env files
// are read first and never override variables that are already set. CLI
// flags in cmd/server override both.
//
// Configuration Sections:
//   - Server: listen address and shutdown timeout
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//   - CORS: allowed origins
//   - Storage: preference store driver and location
//   - Catalog: app catalog file and hot reload
//   - Status: reachability probe tuning
//   - Window: window placement margins
//
// Example Usage:
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("listening on %s\n", cfg.Server.Address())
package config
