package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"sonance/internal/middleware"

	"gorm.io/gorm"
)

// Migration is one versioned schema step. Applied versions are recorded in
// migration_logs and never run twice. Schema changes after version 1 must be
// added as new steps, not folded into the models alone.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

var migrations = []Migration{
	{
		// Tables plus the unique indexes on follow, block, like and flag pairs.
		Version: 1,
		Name:    "initial_schema",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(Models()...) },
	},
	{
		Version: 2,
		Name:    "posts_feed_order_index",
		Up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC)").Error
		},
	},
}

// Migrations returns the registered steps in version order.
func Migrations() []Migration {
	out := append([]Migration(nil), migrations...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// AppliedVersions returns the recorded versions, ascending.
func AppliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return []int{}, nil
	}
	var versions []int
	if err := db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	return versions, nil
}

// PendingMigrations returns the steps not yet recorded.
func PendingMigrations(ctx context.Context, db *gorm.DB) ([]Migration, error) {
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, m := range Migrations() {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// RunMigrations applies every pending step, each in its own transaction with
// its log row. It refuses to run against a database that has versions this
// build does not know, which means an older binary is pointed at a newer
// schema.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration_logs: %w", err)
	}

	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, Migrations()); err != nil {
		return err
	}

	pending, err := PendingMigrations(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range pending {
		middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m, err)
		}
	}
	if len(pending) > 0 {
		middleware.Logger.Info("Database migrations applied", slog.Int("count", len(pending)))
	}
	return nil
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}
	var unknown []string
	for _, v := range applied {
		if _, ok := known[v]; !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	return nil
}
