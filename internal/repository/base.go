// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"sonance/internal/database"
	"sonance/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicate is returned by inserts rejected by a unique index.
var ErrDuplicate = errors.New("duplicate row")

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Users() UserRepository
	Follows() FollowRepository
	Blocks() BlockRepository
	Notifications() NotificationRepository
	PushChannels() PushChannelRepository
	Flags() FlagRepository
	Content() ContentRepository
	Posts() PostRepository
	Comments() CommentRepository
	Stories() StoryRepository
	Trunks() TrunkRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Follows() FollowRepository             { return NewFollowRepository(s.db) }
func (s *gormStore) Blocks() BlockRepository               { return NewBlockRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }
func (s *gormStore) PushChannels() PushChannelRepository   { return NewPushChannelRepository(s.db) }
func (s *gormStore) Flags() FlagRepository                 { return NewFlagRepository(s.db) }
func (s *gormStore) Content() ContentRepository            { return NewContentRepository(s.db) }
func (s *gormStore) Posts() PostRepository                 { return NewPostRepository(s.db) }
func (s *gormStore) Comments() CommentRepository           { return NewCommentRepository(s.db) }
func (s *gormStore) Stories() StoryRepository              { return NewStoryRepository(s.db) }
func (s *gormStore) Trunks() TrunkRepository               { return NewTrunkRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// createErr maps an insert error onto ErrDuplicate or an internal error.
func createErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return models.NewInternalError(err)
}

// firstErr maps a First/Take error onto a not-found or internal error.
func firstErr(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	return models.NewInternalError(err)
}
