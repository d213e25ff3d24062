// Package server wires the HTTP layer: the Fiber app, its middleware stack,
// and the route table.
package server

import (
	"context"
	"log/slog"
	"time"

	"bloggazers/internal/cache"
	"bloggazers/internal/config"
	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"
	"bloggazers/internal/service"
	"bloggazers/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server owns the HTTP application and its dependencies.
type Server struct {
	app *fiber.App
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client

	sessions *session.Manager

	auth     *service.AuthService
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	contacts *service.ContactService

	tracingShutdown func(context.Context) error
}

// NewServer builds a fully wired server from configuration: database,
// Redis, tracing, repositories, services, middleware, routes.
func NewServer(cfg *config.Config, db *gorm.DB) (*Server, error) {
	cache.InitRedis(cfg.RedisURL)

	shutdown, err := middleware.InitTracer(cfg)
	if err != nil {
		return nil, err
	}

	s := NewServerWithDeps(cfg, db, cache.GetClient())
	s.tracingShutdown = shutdown
	return s, nil
}

// NewServerWithDeps builds a server around externally constructed
// dependencies. Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	contactRepo := repository.NewContactRepository(db)

	sessions := session.NewManager(userRepo, rdb)

	s := &Server{
		cfg:      cfg,
		db:       db,
		rdb:      rdb,
		sessions: sessions,
		auth:     service.NewAuthService(cfg, userRepo, rdb),
		users:    service.NewUserService(userRepo, sessions),
		posts:    service.NewPostService(postRepo, rdb),
		comments: service.NewCommentService(commentRepo, postRepo),
		contacts: service.NewContactService(contactRepo),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "bloggazers-api",
		ErrorHandler: errorHandler,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// App exposes the Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return models.RespondWithError(c, fe.Code, err)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.ContextMiddleware())
	if s.cfg.TracingEnabled {
		s.app.Use(middleware.Tracing())
	}

	prom := middleware.InitMetrics("bloggazers-api")
	prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(prom))

	s.app.Use(helmet.New())
	s.app.Use(middleware.StructuredLogger())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	s.app.Use(middleware.RateLimit(s.rdb, 300, time.Minute, "global"))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/health/ready", s.handleReady)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/:provider/url", s.handleAuthURL)
	auth.Get("/:provider/callback", s.handleAuthCallback)
	auth.Post("/refresh", middleware.RateLimit(s.rdb, 30, time.Minute, "auth_refresh"), s.handleRefresh)
	auth.Post("/logout", s.handleLogout)

	api.Post("/session/route", s.OptionalAuth(), s.handleRouteDecision)

	posts := api.Group("/posts")
	posts.Get("/", s.OptionalAuth(), s.handleListPosts)
	posts.Get("/search", s.OptionalAuth(), s.handleSearchPosts)
	posts.Get("/:slug", s.OptionalAuth(), s.handleGetPost)
	posts.Get("/:slug/comments", s.OptionalAuth(), s.handleListComments)
	posts.Post("/", s.AuthRequired(), s.RegistrationComplete(), s.handleCreatePost)
	posts.Put("/:id", s.AuthRequired(), s.RegistrationComplete(), s.handleUpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.RegistrationComplete(), s.handleDeletePost)
	posts.Post("/:id/view", s.handleRegisterView)
	posts.Post("/:id/like", s.AuthRequired(), s.RegistrationComplete(), s.handleLikePost)
	posts.Delete("/:id/like", s.AuthRequired(), s.RegistrationComplete(), s.handleUnlikePost)
	posts.Post("/:id/bookmark", s.AuthRequired(), s.RegistrationComplete(), s.handleBookmarkPost)
	posts.Delete("/:id/bookmark", s.AuthRequired(), s.RegistrationComplete(), s.handleUnbookmarkPost)
	posts.Post("/:id/comments", s.AuthRequired(), s.RegistrationComplete(), s.handleCreateComment)

	comments := api.Group("/comments", s.AuthRequired(), s.RegistrationComplete())
	comments.Put("/:id", s.handleUpdateComment)
	comments.Delete("/:id", s.handleDeleteComment)
	comments.Post("/:id/like", s.handleLikeComment)
	comments.Delete("/:id/like", s.handleUnlikeComment)

	api.Get("/categories", s.handleCategories)
	api.Get("/tags", s.handleTags)
	api.Get("/authors/:username", s.handleGetAuthor)
	api.Get("/authors/:username/posts", s.OptionalAuth(), s.handleAuthorPosts)
	api.Post("/contact", middleware.RateLimit(s.rdb, 5, time.Minute, "contact"), s.handleContact)

	me := api.Group("/users/me", s.AuthRequired())
	me.Get("/", s.handleGetMe)
	me.Put("/", s.RegistrationComplete(), s.handleUpdateMe)
	me.Post("/registration", s.RegistrationPending(), s.handleCompleteRegistration)
	me.Get("/bookmarks", s.RegistrationComplete(), s.handleMyBookmarks)

	admin := api.Group("/admin", s.AuthRequired(), s.RegistrationComplete(), s.AdminRequired())
	admin.Get("/stats", s.handleAdminStats)
	admin.Get("/users", s.handleAdminUsers)
	admin.Put("/users/:id/role", s.handleAdminSetRole)
	admin.Get("/posts", s.handleAdminPosts)
	admin.Delete("/posts/:id", s.handleAdminDeletePost)
	admin.Get("/messages", s.handleAdminMessages)
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "database unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	middleware.Logger.Info("server starting", slog.String("port", s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests and tears down background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.sessions.Close()
	if s.tracingShutdown != nil {
		if terr := s.tracingShutdown(ctx); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}
