package main

import (
	"fmt"
	"os"

	"github.com/asteya/yogaflow-backend/internal/clients/gcs"
	"github.com/asteya/yogaflow-backend/internal/clients/identity"
	"github.com/asteya/yogaflow-backend/internal/clients/rediscache"
	"github.com/asteya/yogaflow-backend/internal/db"
	"github.com/asteya/yogaflow-backend/internal/handlers"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/middleware"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/server"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Clients
	log.Info("Setting up clients from main...")
	identityClient, err := identity.NewClient(log)
	if err != nil {
		log.Error("Could not init identity client", "error", err)
		os.Exit(1)
	}
	objectStore, err := gcs.NewObjectStore(log)
	if err != nil {
		log.Error("Could not init object store", "error", err)
		os.Exit(1)
	}
	urlCache, err := rediscache.NewURLCache(log)
	if err != nil {
		log.Warn("Could not init URL cache, signing every read", "error", err)
		urlCache = nil
	}

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserProfileRepo(thePG, log)
	routineRepo := repos.NewRoutineRepo(thePG, log)
	exerciseRepo := repos.NewExerciseRepo(thePG, log)
	breathingRepo := repos.NewBreathingExerciseRepo(thePG, log)
	meditationRepo := repos.NewMeditationSessionRepo(thePG, log)
	combinedRepo := repos.NewCombinedRoutineRepo(thePG, log)
	relationshipRepo := repos.NewRelationshipRepo(thePG, log)
	progressRepo := repos.NewProgressRepo(thePG, log)
	achievementRepo := repos.NewAchievementRepo(thePG, log)
	clientAchievementRepo := repos.NewClientAchievementRepo(thePG, log)
	uploadSessionRepo := repos.NewUploadSessionRepo(thePG, log)
	mediaAssetRepo := repos.NewMediaAssetRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, identityClient, userRepo)
	userService := services.NewUserService(thePG, log, userRepo)
	routineService := services.NewRoutineService(thePG, log, routineRepo, exerciseRepo, mediaAssetRepo)
	breathingService := services.NewBreathingService(thePG, log, breathingRepo, mediaAssetRepo)
	meditationService := services.NewMeditationService(thePG, log, meditationRepo, mediaAssetRepo)
	combinedService := services.NewCombinedRoutineService(thePG, log, combinedRepo, routineRepo, breathingRepo, meditationRepo)
	relationshipService := services.NewRelationshipService(thePG, log, relationshipRepo, routineRepo, userRepo)
	achievementService := services.NewAchievementService(thePG, log, achievementRepo, clientAchievementRepo, progressRepo)
	progressService := services.NewProgressService(thePG, log, progressRepo, achievementService)
	uploadService := services.NewUploadService(thePG, log, objectStore, urlCache, uploadSessionRepo, mediaAssetRepo)
	mediaService := services.NewMediaService(thePG, log, objectStore, urlCache, mediaAssetRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	routineHandler := handlers.NewRoutineHandler(log, routineService)
	breathingHandler := handlers.NewBreathingHandler(log, breathingService)
	meditationHandler := handlers.NewMeditationHandler(log, meditationService)
	combinedHandler := handlers.NewCombinedRoutineHandler(log, combinedService)
	relationshipHandler := handlers.NewRelationshipHandler(log, relationshipService)
	progressHandler := handlers.NewProgressHandler(log, progressService)
	achievementHandler := handlers.NewAchievementHandler(log, achievementService)
	mediaHandler := handlers.NewMediaHandler(log, mediaService)
	uploadHandler := handlers.NewUploadHandler(log, uploadService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, identityClient, userRepo)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:      server.ParseOrigins(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),
		AuthMiddleware:      authMiddleware,
		HealthcheckHandler:  healthcheckHandler,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		RoutineHandler:      routineHandler,
		BreathingHandler:    breathingHandler,
		MeditationHandler:   meditationHandler,
		CombinedHandler:     combinedHandler,
		RelationshipHandler: relationshipHandler,
		ProgressHandler:     progressHandler,
		AchievementHandler:  achievementHandler,
		MediaHandler:        mediaHandler,
		UploadHandler:       uploadHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
