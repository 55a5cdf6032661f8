package service

import (
	"context"
	"strings"

	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/repository"
)

const maxCommentLength = 2000

// CommentService provides comment operations on visible posts. Comment text
// is censored before it is stored.
type CommentService struct {
	store  repository.Store
	notes  *NotificationService
	posts  *PostService
	filter *ProfanityFilter
}

// NewCommentService returns a new CommentService.
func NewCommentService(store repository.Store, notes *NotificationService, posts *PostService) *CommentService {
	return &CommentService{store: store, notes: notes, posts: posts, filter: NewProfanityFilter()}
}

func (s *CommentService) clean(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Comment content cannot be empty")
	}
	if len(content) > maxCommentLength {
		return "", models.NewValidationError("Comment is too long")
	}
	return s.filter.Censor(content), nil
}

// Create adds authorID's comment to a post they can see and notifies the
// post's author.
func (s *CommentService) Create(ctx context.Context, authorID, postID uint, content string) (*models.Comment, error) {
	content, err := s.clean(content)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, UserID: authorID, Content: content}
	var emitted *models.Notification
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		emitted, err = s.notes.Emit(ctx, tx, post.UserID, authorID, notifications.Comment{PostID: post.ID})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notes.Dispatch(ctx, emitted)

	return s.store.Comments().GetByID(ctx, comment.ID)
}

// Update replaces the text of actorID's own comment. The author must still be
// able to see the post.
func (s *CommentService) Update(ctx context.Context, actorID, commentID uint, content string) (*models.Comment, error) {
	content, err := s.clean(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, models.NewUnauthorizedError("You can only edit your own comments")
	}
	if _, err := s.posts.Get(ctx, actorID, comment.PostID); err != nil {
		return nil, err
	}

	if err := s.store.Comments().UpdateContent(ctx, comment.ID, content); err != nil {
		return nil, err
	}
	return s.store.Comments().GetByID(ctx, comment.ID)
}

// ListForPost returns the comments viewerID may see. Comments by accounts the
// post's author has blocked are left out for every viewer.
func (s *CommentService) ListForPost(ctx context.Context, viewerID, postID uint) ([]models.Comment, error) {
	post, err := s.posts.Get(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	return s.store.Comments().ListVisible(ctx, post.ID, post.UserID, viewerID)
}

// Delete removes a comment. Its author, the post's author and moderators may
// delete it.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	owners := []uint{comment.UserID}
	if post, err := s.store.Posts().GetByID(ctx, comment.PostID); err == nil {
		owners = append(owners, post.UserID)
	}
	if err := requireOwnerOrModerator(ctx, s.store, actorID, owners...); err != nil {
		return err
	}
	return s.store.Comments().Delete(ctx, comment.ID)
}
