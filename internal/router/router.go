package router

import (
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/somnia-app/somnia/backend/internal/activity"
	"github.com/somnia-app/somnia/backend/internal/ai"
	"github.com/somnia-app/somnia/backend/internal/feed"
	"github.com/somnia-app/somnia/backend/internal/handlers"
	"github.com/somnia-app/somnia/backend/internal/middleware"
	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/push"
	"github.com/somnia-app/somnia/backend/internal/repositories"
	"github.com/somnia-app/somnia/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	titleCacheTTL   = 24 * time.Hour
	titleDailyQuota = 50
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, messagingClient *messaging.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Comment{},
		&models.CommentLike{},
		&models.SavedDream{},
		&models.InboxEntry{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	dreamRepo := repositories.NewMongoDreamRepository(mgClient.Database("dreamjournal"))
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(pgdb)
	savedDreamRepo := repositories.NewPostgresSavedDreamRepository(pgdb)
	inboxRepo := repositories.NewPostgresInboxRepository(pgdb)
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(pgdb)

	// --- Core services ---
	recorder := activity.NewRecorder(inboxRepo)
	dispatcher := push.NewDispatcher(userRepo, deviceTokenRepo, messagingClient)
	aggregator := feed.NewAggregator(dreamRepo, handlers.NewRepoGraphResolver(userRepo, followRepo))

	// The OpenAI client may be absent; pass a true nil interface so the
	// title service takes its fallback path instead of a typed-nil call.
	var llm ai.LLMClient
	if client := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel); client != nil {
		llm = client
	}
	titleService := ai.NewService(llm, ai.NewMemoryCache(titleCacheTTL), ai.NewDailyLimiter(titleDailyQuota))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Title generation (origin-checked, no session required) ---
	aiGroup := e.Group("/api/v1/ai")
	aiGroup.Use(middleware.OriginCheckMiddleware(cfg.AllowedOrigins))
	aiHandler := handlers.NewAIHandler(titleService)
	aiHandler.RegisterAIRoutes(aiGroup)
	log.Println("AI routes configured.")

	// --- Push dispatch (Firebase ID token, not the local session JWT) ---
	pushGroup := e.Group("/api/v1/push")
	pushGroup.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
	pushHandler := handlers.NewPushHandler(dispatcher)
	pushHandler.RegisterPushRoutes(pushGroup)
	log.Println("Push routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	log.Println("User profile routes configured.")

	// Dream routes
	dreamHandler := handlers.NewDreamHandler(dreamRepo, userRepo, followRepo)
	dreamHandler.RegisterDreamRoutes(api)
	log.Println("Dream routes configured.")

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(dreamRepo, userRepo, followRepo, recorder)
	reactionHandler.RegisterReactionRoutes(api)
	log.Println("Reaction routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(aggregator, userRepo, followRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, commentLikeRepo, dreamRepo, userRepo, followRepo, recorder)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Saved dream routes
	savedDreamHandler := handlers.NewSavedDreamHandler(savedDreamRepo, dreamRepo, userRepo, followRepo)
	savedDreamHandler.RegisterSavedDreamRoutes(api)
	log.Println("Saved dream routes configured.")

	// Inbox routes
	inboxHandler := handlers.NewInboxHandler(inboxRepo)
	inboxHandler.RegisterInboxRoutes(api)
	log.Println("Inbox routes configured.")

	// Device token routes
	deviceTokenHandler := handlers.NewDeviceTokenHandler(deviceTokenRepo)
	deviceTokenHandler.RegisterDeviceTokenRoutes(api)
	log.Println("Device token routes configured.")

	log.Println("All routes configured.")
}
