package seed

import (
	"context"
	"fmt"
	"log/slog"

	"sonance/internal/database"
	"sonance/internal/models"
	"sonance/internal/repository"
	"sonance/internal/service"

	"gorm.io/gorm"
)

const (
	followsPerUser  = 4
	maxLikesPerPost = 5
	maxCommentsPost = 3
	trunkEvery      = 4
	branchesPerRun  = 3
)

// Summary reports what a seed run created.
type Summary struct {
	Users    int
	Follows  int
	Posts    int
	Likes    int
	Comments int
	Trunks   int
	Branches int
}

// Seeder populates a database through the service layer, so follow edges,
// visibility and notifications come out the same way real traffic produces them.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory

	follows  *service.FollowService
	posts    *service.PostService
	comments *service.CommentService
	trunks   *service.TrunkService
}

// NewSeeder returns a Seeder for db. Notifications are stored but not pushed.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	store := repository.NewStore(db)
	notes := service.NewNotificationService(store, nil)
	follows := service.NewFollowService(store, notes)
	visibility := service.NewVisibilityResolver(follows)
	posts := service.NewPostService(store, notes, visibility)
	return &Seeder{
		db:       db,
		opts:     opts,
		factory:  NewFactory(db, opts),
		follows:  follows,
		posts:    posts,
		comments: service.NewCommentService(store, notes, posts),
		trunks:   service.NewTrunkService(store, notes, visibility),
	}
}

// ClearAll deletes every row the application owns.
func (s *Seeder) ClearAll() error {
	all := database.Models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	slog.Info("Cleared seeded tables", slog.Int("tables", len(all)))
	return nil
}

// Run creates users, a follow graph, posts with engagement, and trunks.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	users, err := s.seedUsers()
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)

	if sum.Follows, err = s.seedFollows(ctx, users); err != nil {
		return nil, err
	}
	if err := s.seedPosts(ctx, users, sum); err != nil {
		return nil, err
	}
	if err := s.seedTrunks(ctx, users, sum); err != nil {
		return nil, err
	}

	slog.Info("Seed complete",
		slog.Int("users", sum.Users),
		slog.Int("follows", sum.Follows),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
		slog.Int("branches", sum.Branches),
	)
	return sum, nil
}

func (s *Seeder) seedUsers() ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		var overrides []func(*models.User)
		if i == 0 {
			overrides = append(overrides, func(u *models.User) {
				u.Username = "moderator"
				u.Email = "moderator@sonance.test"
				u.IsModerator = true
				u.ProfilePublic = true
			})
		}
		u, err := s.factory.CreateUser(overrides...)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// seedFollows has every user request a few others. Private targets accept
// about half of their requests and leave the rest pending.
func (s *Seeder) seedFollows(ctx context.Context, users []*models.User) (int, error) {
	accepted := 0
	for i, u := range users {
		for _, j := range s.factory.Pick(len(users), followsPerUser, i) {
			target := users[j]
			status, err := s.follows.RequestFollow(ctx, u.ID, target.ID)
			if err != nil {
				return 0, fmt.Errorf("follow %d -> %d: %w", u.ID, target.ID, err)
			}
			if status == models.FollowStatusPending && s.factory.faker.Bool() {
				if err := s.acceptFrom(ctx, u.ID, target.ID); err != nil {
					return 0, err
				}
				status = models.FollowStatusAccepted
			}
			if status == models.FollowStatusAccepted {
				accepted++
			}
		}
	}
	return accepted, nil
}

func (s *Seeder) acceptFrom(ctx context.Context, followerID, targetID uint) error {
	pending, err := s.follows.PendingRequests(ctx, targetID)
	if err != nil {
		return err
	}
	for _, req := range pending {
		if req.FollowerID == followerID {
			return s.follows.AcceptRequest(ctx, req.ID, targetID)
		}
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, sum *Summary) error {
	for i := 0; i < s.opts.NumPosts; i++ {
		authorIdx := s.factory.faker.Number(0, len(users)-1)
		post, err := s.posts.Create(ctx, users[authorIdx].ID, s.factory.PostInput())
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		likes := s.factory.faker.Number(0, maxLikesPerPost)
		for _, j := range s.factory.Pick(len(users), likes, authorIdx) {
			if err := s.posts.Like(ctx, users[j].ID, post.ID); err != nil {
				if models.HasCode(err, models.CodeUnauthorized) {
					continue
				}
				return fmt.Errorf("like post %d: %w", post.ID, err)
			}
			sum.Likes++
		}

		comments := s.factory.faker.Number(0, maxCommentsPost)
		for _, j := range s.factory.Pick(len(users), comments, authorIdx) {
			if _, err := s.comments.Create(ctx, users[j].ID, post.ID, s.factory.Comment()); err != nil {
				if models.HasCode(err, models.CodeUnauthorized) {
					continue
				}
				return fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			sum.Comments++
		}
	}
	return nil
}

func (s *Seeder) seedTrunks(ctx context.Context, users []*models.User, sum *Summary) error {
	for i := 0; i < len(users); i += trunkEvery {
		owner := users[i]
		trunk, err := s.trunks.Create(ctx, owner.ID, fmt.Sprintf("%s essentials", s.factory.Artist()))
		if err != nil {
			return fmt.Errorf("create trunk: %w", err)
		}
		sum.Trunks++

		for _, j := range s.factory.Pick(len(users), branchesPerRun, i) {
			if _, err := s.trunks.AddBranch(ctx, users[j].ID, trunk.ID, s.factory.BranchInput()); err != nil {
				if models.HasCode(err, models.CodeUnauthorized) {
					continue
				}
				return fmt.Errorf("add branch to trunk %d: %w", trunk.ID, err)
			}
			sum.Branches++
		}
	}
	return nil
}
