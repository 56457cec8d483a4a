// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	_ "bookmarket/docs" // swagger docs
	"bookmarket/internal/cache"
	"bookmarket/internal/config"
	"bookmarket/internal/database"
	"bookmarket/internal/identity"
	"bookmarket/internal/middleware"
	"bookmarket/internal/models"
	"bookmarket/internal/observability"
	"bookmarket/internal/prediction"
	"bookmarket/internal/repository"
	"bookmarket/internal/service"
	"bookmarket/internal/session"
	"bookmarket/internal/storage"

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
	"gorm.io/gorm"
)

// Deps are the external collaborators that the server does not own.
type Deps struct {
	Predictor prediction.Predictor
	Store     storage.ObjectStore
	Verifier  identity.Verifier
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	userRepo       repository.UserRepository
	listingRepo    repository.ListingRepository
	authService    *service.AuthService
	profileService *service.ProfileService
	listingService *service.ListingService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	store, err := storage.NewMinioStore(storage.Options{
		Endpoint:      cfg.StorageEndpoint,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		UseSSL:        cfg.StorageUseSSL,
		PublicBaseURL: cfg.StoragePublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage init failed: %w", err)
	}

	deps := Deps{
		Predictor: prediction.NewClient(prediction.ClientOpts{
			BaseURL: cfg.PredictionAPIURL,
			Timeout: time.Duration(cfg.PredictionTimeoutSeconds) * time.Second,
		}),
		Store: store,
		Verifier: identity.NewFirebaseVerifier(identity.Options{
			ProjectID: cfg.FirebaseProjectID,
			CertsURL:  cfg.FirebaseCertsURL,
		}),
	}
	return NewServerWithDeps(cfg, db, cache.GetClient(), deps)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it to inject SQLite, miniredis and stubbed external services.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	sessions := session.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, redisClient)
	images := service.NewImageService(deps.Store, cfg)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		sessions:       sessions,
		userRepo:       userRepo,
		listingRepo:    listingRepo,
		authService:    service.NewAuthService(userRepo, deps.Verifier, sessions, images),
		profileService: service.NewProfileService(userRepo, images),
		listingService: service.NewListingService(listingRepo, userRepo, deps.Predictor, images),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request, trace and user ids into the request context for slog.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
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
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later."))
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if !s.config.IsProduction() {
		app.Get("/monitor", monitor.New(monitor.Config{Title: "Bookmarket API Monitor"}))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth := app.Group("/auth")
	auth.Post("/", middleware.RateLimit(s.redis, 20, 5*time.Minute, "authenticate"), s.Authenticate)
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	profile := app.Group("/profile", s.AuthRequired())
	profile.Get("/", s.GetProfile)
	profile.Put("/", s.UpdateProfile)
	profile.Put("/upload", s.UploadAvatar)

	book := app.Group("/book", s.AuthRequired())
	book.Post("/predict", middleware.RateLimit(s.redis, 20, time.Minute, "predict"), s.PredictBook)
	book.Get("/", s.GetOpenListings)
	book.Get("/search", s.SearchListings)

	// Caller-scoped routes must be registered before /:id.
	mine := book.Group("/author")
	mine.Get("/", s.GetMyListings)
	mine.Post("/post", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_listing"), s.CreateListing)
	mine.Get("/post/:id", s.GetMyListing)
	mine.Put("/post/:id", s.UpdateListing)
	mine.Patch("/post/:id/sold", s.MarkListingSold)
	mine.Delete("/post/:id", s.DeleteListing)

	book.Get("/:id", s.GetListing)
}

// AuthRequired accepts an API session token from the Authorization header
// and rejects revoked ones.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := middleware.BearerToken(c)
		if !ok {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.sessions.Parse(tokenString)
		if err != nil {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}
		if err := s.sessions.CheckRevoked(c.UserContext(), claims); err != nil {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// newApp builds the Fiber app with middleware and routes installed.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Bookmarket API",
		BodyLimit: (s.maxUploadMB() + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, fe)
			}
			appErr := models.AsAppError(err)
			if appErr.Status() >= fiber.StatusInternalServerError {
				middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			}
			return models.RespondWithAppError(c, appErr)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) maxUploadMB() int {
	if s.config.ImageMaxUploadSizeMB > 0 {
		return s.config.ImageMaxUploadSizeMB
	}
	return service.DefaultImageMaxUploadSizeMB
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.newApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests, then closes the database pool and the
// Redis client. All close errors are returned together.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	log.Println("Server shutdown complete")
	return errors.Join(errs...)
}
