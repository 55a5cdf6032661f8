// Command main runs the development database seeder.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"sonance/internal/config"
	"sonance/internal/database"
	"sonance/internal/middleware"
	"sonance/internal/seed"
)

func main() {
	slog.SetDefault(middleware.Logger)

	numUsers := flag.Int("users", 40, "Number of users to create")
	numPosts := flag.Int("posts", 150, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes")
	seedValue := flag.Int64("seed", 0, "Random seed for a reproducible run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if cfg.IsProduction() {
		fatal("Refusing to seed", errors.New("APP_ENV is production"))
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:   *numUsers,
		NumPosts:   *numPosts,
		SkipBcrypt: *fast,
		Seed:       *seedValue,
	})
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			fatal("Cleanup failed", err)
		}
	}
	if _, err := s.Run(context.Background()); err != nil {
		fatal("Seeding failed", err)
	}
	slog.Info("Seeded accounts share one password", slog.String("password", seed.DefaultPassword))
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
