// Command migrate applies or reports schema migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sonance/internal/config"
	"sonance/internal/database"
	"sonance/internal/middleware"
)

func main() {
	slog.SetDefault(middleware.Logger)
	if err := run(); err != nil {
		slog.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Connect must not migrate on its own; this command decides.
	cfg.DBSchemaMode = config.SchemaModeOff
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		slog.Info("migrations up to date")
	case "status":
		applied, err := database.AppliedVersions(ctx, db)
		if err != nil {
			return err
		}
		pending, err := database.PendingMigrations(ctx, db)
		if err != nil {
			return err
		}
		slog.Info("schema status", slog.Int("applied", len(applied)), slog.Int("pending", len(pending)))
		for _, m := range pending {
			slog.Info("pending migration", slog.String("migration", m.String()))
		}
	default:
		return usage()
	}
	return nil
}
