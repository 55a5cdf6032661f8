// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sonance/internal/alerts"
	"sonance/internal/config"
	"sonance/internal/jobs"
	"sonance/internal/middleware"
	"sonance/internal/models"
	"sonance/internal/notifications"
	"sonance/internal/repository"
	"sonance/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	store          repository.Store

	dispatcher *notifications.Dispatcher
	notifier   *notifications.Notifier
	hub        *notifications.Hub
	jobs       *jobs.Runner
	stopJobs   context.CancelFunc

	notificationService *service.NotificationService
	followService       *service.FollowService
	blockService        *service.BlockService
	flagService         *service.FlagService
	suggestionService   *service.SuggestionService
	postService         *service.PostService
	commentService      *service.CommentService
	storyService        *service.StoryService
	trunkService        *service.TrunkService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case realtime publishing is off and the
// push queue must be the in-memory one.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, sender alerts.Sender) (*Server, error) {
	store := repository.NewStore(db)

	queue, err := newQueue(cfg, redisClient)
	if err != nil {
		return nil, err
	}
	var notifier *notifications.Notifier
	if redisClient != nil {
		notifier = notifications.NewNotifier(redisClient)
	}
	dispatcher := notifications.NewDispatcher(store, queue, notifier, cfg.FrontendURL, cfg.PushWorkers,
		notifications.WebPushDeliverer{},
		notifications.APNsDeliverer{},
	)

	if sender == nil {
		sender = alerts.LogSender{}
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("sonance-api"),
		store:          store,
		dispatcher:     dispatcher,
		notifier:       notifier,
		hub:            notifications.NewHub(),
	}

	s.notificationService = service.NewNotificationService(store, dispatcher)
	s.followService = service.NewFollowService(store, s.notificationService)
	s.blockService = service.NewBlockService(store)
	visibility := service.NewVisibilityResolver(s.followService)
	s.flagService = service.NewFlagService(store, sender, cfg.ModerationAlertEmail)
	s.suggestionService = service.NewSuggestionService(store)
	s.postService = service.NewPostService(store, s.notificationService, visibility)
	s.commentService = service.NewCommentService(store, s.notificationService, s.postService)
	s.storyService = service.NewStoryService(store, visibility)
	s.trunkService = service.NewTrunkService(store, s.notificationService, visibility)

	s.jobs = jobs.NewRunner(cfg.MaintenanceSchedule,
		&jobs.StoryPurger{Stories: store.Stories()},
		&jobs.NotificationPurger{
			Notifications: store.Notifications(),
			Retention:     time.Duration(cfg.NotificationRetentionDays) * 24 * time.Hour,
		},
	)

	return s, nil
}

func newQueue(cfg *config.Config, redisClient *redis.Client) (notifications.Queue, error) {
	switch cfg.PushQueue {
	case config.QueueRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("PUSH_QUEUE=%s requires a reachable Redis", config.QueueRedis)
		}
		return notifications.NewRedisQueue(redisClient, notifications.DefaultRedisQueueKey, int64(cfg.PushQueueSize)), nil
	default:
		return notifications.NewMemoryQueue(cfg.PushQueueSize), nil
	}
}

// StartBackground launches the push dispatcher workers, the realtime
// subscriber feeding notification sockets, and the maintenance scheduler.
// Shutdown stops them.
func (s *Server) StartBackground() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopJobs = cancel
	s.dispatcher.Start(ctx)
	if s.notifier != nil {
		if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
			cancel()
			return fmt.Errorf("start realtime subscriber: %w", err)
		}
	}
	if err := s.jobs.Start(ctx); err != nil {
		cancel()
		return err
	}
	return nil
}

// Shutdown stops background work and waits for in-flight deliveries until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopJobs == nil {
		return nil
	}
	s.jobs.Stop()
	s.stopJobs()
	s.hub.Close()

	done := make(chan struct{})
	go func() {
		s.dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("Background workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for push workers: %w", ctx.Err())
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes registers every API route.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// Public reads go first so the protected group's middleware never sees them.
	api.Get("/posts", middleware.OptionalAuth, s.GetFeed)
	api.Get("/posts/user/:userId", middleware.OptionalAuth, s.GetUserPosts)
	api.Get("/posts/:id", middleware.OptionalAuth, s.GetPost)
	api.Get("/posts/:id/comments", middleware.OptionalAuth, s.GetComments)
	api.Get("/stories/user/:userId", middleware.OptionalAuth, s.GetUserStories)
	api.Get("/trunks/:id", middleware.OptionalAuth, s.GetTrunk)

	api.Get("/ws/notifications", middleware.WebSocketAuth, s.NotificationSocket())

	protected := api.Group("", middleware.AuthRequired)

	follows := protected.Group("/follows")
	follows.Get("/requests", s.GetPendingRequests)
	follows.Get("/requests/sent", s.GetSentRequests)
	follows.Post("/requests/:requestId/accept", s.AcceptFollowRequest)
	follows.Post("/requests/:requestId/reject", s.RejectFollowRequest)
	follows.Delete("/requests/:requestId", s.CancelFollowRequest)
	follows.Get("/status/:userId", s.GetFollowStatus)
	follows.Get("/:userId/followers", s.GetFollowers)
	follows.Get("/:userId/following", s.GetFollowing)
	follows.Get("/:userId/counts", s.GetFollowCounts)
	follows.Post("/:userId", s.RequestFollow)
	follows.Delete("/:userId", s.Unfollow)

	blocks := protected.Group("/blocks")
	blocks.Get("/", s.GetBlockedUsers)
	blocks.Get("/:userId", s.GetBlockStatus)
	blocks.Post("/:userId", s.BlockUser)
	blocks.Delete("/:userId", s.UnblockUser)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadCount)
	notes.Post("/read-all", s.MarkAllNotificationsRead)
	notes.Post("/channels", s.RegisterPushChannel)
	notes.Delete("/channels", s.UnregisterPushChannel)
	notes.Post("/:id/read", s.MarkNotificationRead)

	flags := protected.Group("/flags")
	flags.Post("/", s.FlagContent)
	flags.Get("/pending", s.GetPendingFlags)
	flags.Post("/review", s.ReviewContent)

	protected.Get("/suggestions", s.GetSuggestions)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Delete("/:id", s.DeletePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Put("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)

	protected.Post("/stories", s.CreateStory)

	trunks := protected.Group("/trunks")
	trunks.Post("/", s.CreateTrunk)
	trunks.Post("/:id/branches", s.AddBranch)
}

// LivenessCheck reports that the process is serving.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

const (
	checkHealthy     = "healthy"
	checkUnhealthy   = "unhealthy"
	checkUnavailable = "unavailable"
)

// ReadinessCheck pings the database and Redis. The database is required;
// Redis only when the push queue lives there. A failing optional Redis
// reports "degraded" with a 200 so the instance keeps taking traffic.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := checkHealthy
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = checkUnhealthy
	}

	redisStatus := checkUnavailable
	if s.redis != nil {
		redisStatus = checkHealthy
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = checkUnhealthy
		}
	}
	redisRequired := s.config.PushQueue == config.QueueRedis

	status, overall := fiber.StatusOK, checkHealthy
	switch {
	case dbStatus != checkHealthy, redisRequired && redisStatus != checkHealthy:
		status, overall = fiber.StatusServiceUnavailable, checkUnhealthy
	case redisStatus == checkUnhealthy:
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database":   dbStatus,
			"redis":      redisStatus,
			"push_queue": s.config.PushQueue,
		},
		"time": time.Now(),
	})
}

// respond renders err with the status its code maps to.
func respond(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}
