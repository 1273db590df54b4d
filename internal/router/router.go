package router

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/nanogram/backend/internal/handlers"
	"github.com/anonto42/nanogram/backend/internal/middleware"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/internal/services"
	"github.com/anonto42/nanogram/backend/pkg/config"
)

// Dependencies are the clients and settings the API is assembled from.
type Dependencies struct {
	Config   *config.Config
	Postgres *gorm.DB
	Mongo    *mongo.Database
	// Firebase is nil when Firebase login is disabled.
	Firebase *auth.Client
	Logger   *zap.Logger
}

// SetupRoutes migrates the stores, builds repositories and services, and
// registers every route under /api/v1.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) error {
	log := deps.Logger

	// --- Stores ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	if err := userRepo.Migrate(); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := repositories.EnsureIndexes(ctx, deps.Mongo); err != nil {
		return fmt.Errorf("ensure mongo indexes: %w", err)
	}
	log.Info("store schema ready")

	postRepo := repositories.NewMongoPostRepository(deps.Mongo)
	commentRepo := repositories.NewMongoCommentRepository(deps.Mongo)
	likeRepo := repositories.NewMongoLikeRepository(deps.Mongo)
	followRepo := repositories.NewMongoFollowRepository(deps.Mongo)
	savedPostRepo := repositories.NewMongoSavedPostRepository(deps.Mongo)
	notificationRepo := repositories.NewMongoNotificationRepository(deps.Mongo)

	houseAccountID, err := services.ResolveHouseAccount(ctx, userRepo, deps.Config.HouseAccountUsername)
	if err != nil {
		return fmt.Errorf("resolve house account: %w", err)
	}

	// --- Services ---
	enricher := services.NewPostEnricher(userRepo, likeRepo, commentRepo, savedPostRepo)
	feedService := services.NewFeedService(postRepo, followRepo, userRepo, enricher, houseAccountID)
	engagementService := services.NewEngagementService(
		postRepo, commentRepo, likeRepo, savedPostRepo, followRepo, userRepo, notificationRepo,
	)
	notificationService := services.NewNotificationService(notificationRepo, commentRepo, userRepo)
	postService := services.NewPostService(
		postRepo, userRepo, likeRepo, commentRepo, savedPostRepo, notificationRepo, enricher,
	)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo)
	profileService := services.NewProfileService(userRepo, followRepo, postRepo)

	jwtManager := middleware.NewJWTManager(deps.Config.JWTSecret, deps.Config.JWTTTL)
	resolver := middleware.ChainResolver{jwtManager}
	var verifier services.IDTokenVerifier
	if deps.Firebase != nil {
		verifier = deps.Firebase
		resolver = append(resolver, middleware.NewFirebaseResolver(deps.Firebase, userRepo))
	}
	authService := services.NewAuthService(userRepo, jwtManager, verifier)

	routeAuth := handlers.RouteAuth{
		Required: middleware.Authenticate(resolver, false),
		Optional: middleware.Authenticate(resolver, true),
	}

	// --- Routes ---
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterAuthRoutes(api.Group("/auth"))
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(api, routeAuth)
	handlers.NewPostHandler(postService).RegisterPostRoutes(api, routeAuth)
	handlers.NewLikeHandler(engagementService).RegisterLikeRoutes(api, routeAuth)
	handlers.NewSavedPostHandler(engagementService, postService).RegisterSavedPostRoutes(api, routeAuth)
	handlers.NewCommentHandler(engagementService, commentService).RegisterCommentRoutes(api, routeAuth)
	handlers.NewFollowHandler(engagementService, profileService).RegisterFollowRoutes(api, routeAuth)
	handlers.NewUserHandler(profileService).RegisterProfileRoutes(api, routeAuth)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api, routeAuth)

	log.Info("routes configured",
		zap.Bool("firebase_login", deps.Firebase != nil),
		zap.Bool("house_account_excluded", houseAccountID != ""),
	)
	return nil
}
