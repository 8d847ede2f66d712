// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	_ "github.com/mrJackie7/coderdev-hub/docs" // swagger docs
	"github.com/mrJackie7/coderdev-hub/internal/auth"
	"github.com/mrJackie7/coderdev-hub/internal/bootstrap"
	"github.com/mrJackie7/coderdev-hub/internal/config"
	"github.com/mrJackie7/coderdev-hub/internal/featureflags"
	"github.com/mrJackie7/coderdev-hub/internal/github"
	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/notifications"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	stores         *repository.Stores
	redis          *redis.Client
	app            *fiber.App
	appOnce        sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tokens         *auth.Tokens
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	authService    *service.AuthService
	profileService *service.ProfileService
	postService    *service.PostService
	github         *github.Client
	flags          *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	stores, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, stores, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the stores and Redis.
// redisClient may be nil: rate limiting, revocation and caching are then skipped
// and feed events go straight to the local hub.
func NewServerWithDeps(cfg *config.Config, stores *repository.Stores, redisClient *redis.Client) (*Server, error) {
	if stores == nil {
		return nil, errors.New("stores are required")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL(), redisClient)

	server := &Server{
		config:         cfg,
		stores:         stores,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("devhub-api"),
		tokens:         tokens,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		authService:    service.NewAuthService(stores.Users, tokens),
		profileService: service.NewProfileService(stores.Profiles, stores.Posts, stores.Users),
		postService:    service.NewPostService(stores.Posts, stores.Users),
		github: github.NewClient(github.Options{
			BaseURL:  cfg.GithubAPIURL,
			Token:    cfg.GithubToken,
			Timeout:  cfg.GithubTimeout(),
			CacheTTL: cfg.GithubCacheTTL(),
		}),
		flags: featureflags.NewManager(cfg.FeatureFlags),
	}
	server.shutdownCtx, server.shutdownFn = context.WithCancel(context.Background())

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-auth-token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Errors: []models.ErrorMessage{{Msg: "Too many requests, please try again later."}},
			})
		},
	}))

	app.Use(middleware.TracingMiddleware())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.tokens)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "DevHub Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Credentials
	api.Post("/users", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	authGroup := api.Group("/auth")
	authGroup.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Get("/", authRequired, s.LoadUser)
	authGroup.Post("/logout", authRequired, s.Logout)

	// Profiles: specific paths before the collection routes
	profile := api.Group("/profile")
	profile.Get("/me", authRequired, s.GetMyProfile)
	profile.Get("/user/:user_id", s.GetProfileByUser)
	profile.Get("/github/:username", s.featureGate(featureflags.GithubRepos), s.GetGithubRepos)
	profile.Put("/experience", authRequired, s.AddExperience)
	profile.Delete("/experience/:exp_id", authRequired, s.RemoveExperience)
	profile.Put("/education", authRequired, s.AddEducation)
	profile.Delete("/education/:edu_id", authRequired, s.RemoveEducation)
	profile.Get("/", s.GetProfiles)
	profile.Post("/", authRequired, s.UpsertProfile)
	profile.Delete("/", authRequired, s.DeleteAccount)

	// Posts are members-only
	posts := api.Group("/posts", authRequired)
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.CreatePost)
	posts.Put("/like/:id", s.LikePost)
	posts.Put("/unlike/:id", s.UnlikePost)
	posts.Post("/comment/:id", s.AddComment)
	posts.Delete("/comment/:id/:comment_id", s.RemoveComment)
	// Generic /:id routes must be last
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	// Feed events
	api.Get("/ws", authRequired, s.featureGate(featureflags.RealtimeFeed), upgradeRequired, s.WebsocketHandler())

	api.Get("/feature-flags", authRequired, s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.stores.Ping(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "store ping failed", "error", err)
		storeStatus = "unhealthy"
	}

	// Redis is optional; without it caching and revocation are off.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application once and wires the feed hub to Redis.
func (s *Server) App() *fiber.App {
	s.appOnce.Do(func() {
		app := fiber.New(fiber.Config{
			AppName:      "DevHub API",
			BodyLimit:    1 * 1024 * 1024,
			ErrorHandler: errorHandler,
		})
		s.SetupMiddleware(app)
		s.SetupRoutes(app)
		s.app = app

		if s.notifier.Enabled() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
			}
		}
	})
	return s.app
}

// errorHandler renders errors that escaped a handler in the standard body.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Errors: []models.ErrorMessage{{Msg: fe.Message}},
		})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"method", c.Method(), "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port, "store", s.config.StoreDriver)
	return app.Listen(":" + s.config.Port)
}

// Serve serves the API on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.App().Listener(ln)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the hub wiring goroutine
	s.shutdownFn()

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	// Close WebSocket connections gracefully
	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
	}

	if err := s.stores.Close(ctx); err != nil {
		middleware.Logger.Error("error closing store", "error", err)
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
