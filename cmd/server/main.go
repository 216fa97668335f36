package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/config"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/server"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return err
	}

	// Flags override the environment
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.String("port")
	}
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("catalog") {
		cfg.Catalog.File = cmd.String("catalog")
	}
	if cmd.IsSet("store") {
		cfg.Storage.Driver = cmd.String("store")
	}
	if cmd.Bool("dev") {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:   "gmlportal",
		Usage:  "GML Portal desktop backend: windows, launcher, status monitor and terminal",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Path to a .env file (skipped when missing)",
				Value:   ".env",
				Sources: cli.EnvVars("PORTAL_ENV_FILE"),
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "HTTP listen port",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "HTTP listen host",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "App catalog file (json, yaml or toml)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Preference store driver: memory, disk or sqlite",
			},
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "Development mode: console logs at debug level",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gmlportal: %v\n", err)
		os.Exit(1)
	}
}
