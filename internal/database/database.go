// Package database opens the Postgres connection and owns the schema.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"sonance/internal/config"
	"sonance/internal/middleware"
	"sonance/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second

	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// DSN renders the connection settings as a postgres URL. Credentials are
// escaped, so passwords may contain any character.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Connect opens the database, waiting for it to accept connections, and
// applies pending migrations unless DB_SCHEMA_MODE is off.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         NewGormLogger(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}
		middleware.Logger.Warn("Database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.String("host", cfg.DBHost),
			slog.String("error", err.Error()),
		)
		time.Sleep(time.Duration(attempt) * connectBackoff)
	}
	middleware.Logger.Info("Database connected successfully", slog.String("db", cfg.DBName))

	switch cfg.DBSchemaMode {
	case config.SchemaModeOff:
		middleware.Logger.Info("Schema migrations skipped", slog.String("mode", cfg.DBSchemaMode))
	default:
		if err := RunMigrations(context.Background(), db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.UserBlock{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Story{},
		&models.Trunk{},
		&models.Branch{},
		&models.Flag{},
		&models.Notification{},
		&models.PushChannel{},
	}
}

// Migrate creates or updates every application table without recording a
// version. Tests use it for throwaway databases.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
