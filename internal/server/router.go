package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/asteya/yogaflow-backend/internal/handlers"
	"github.com/asteya/yogaflow-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins      []string
	AuthMiddleware      *middleware.AuthMiddleware
	HealthcheckHandler  *handlers.HealthcheckHandler
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	RoutineHandler      *handlers.RoutineHandler
	BreathingHandler    *handlers.BreathingHandler
	MeditationHandler   *handlers.MeditationHandler
	CombinedHandler     *handlers.CombinedRoutineHandler
	RelationshipHandler *handlers.RelationshipHandler
	ProgressHandler     *handlers.ProgressHandler
	AchievementHandler  *handlers.AchievementHandler
	MediaHandler        *handlers.MediaHandler
	UploadHandler       *handlers.UploadHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	api := router.Group("/api")
	api.POST("/auth/signup", cfg.AuthHandler.SignUp)
	api.POST("/auth/login", cfg.AuthHandler.SignIn)

	// Protected
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/auth/password", cfg.AuthHandler.ChangePassword)

	protected.GET("/users/me", cfg.UserHandler.Me)
	protected.GET("/users", cfg.UserHandler.List)
	protected.POST("/users/:id/role", cfg.UserHandler.UpdateRole)

	protected.POST("/routines", cfg.RoutineHandler.Create)
	protected.GET("/routines", cfg.RoutineHandler.List)
	protected.GET("/routines/:id", cfg.RoutineHandler.Get)
	protected.PATCH("/routines/:id", cfg.RoutineHandler.Update)
	protected.DELETE("/routines/:id", cfg.RoutineHandler.Delete)
	protected.GET("/routines/:id/exercises", cfg.RoutineHandler.ListExercises)
	protected.POST("/routines/:id/exercises", cfg.RoutineHandler.AddExercise)
	protected.PATCH("/exercises/:id", cfg.RoutineHandler.UpdateExercise)
	protected.DELETE("/exercises/:id", cfg.RoutineHandler.DeleteExercise)

	protected.POST("/breathing-exercises", cfg.BreathingHandler.Create)
	protected.GET("/breathing-exercises", cfg.BreathingHandler.List)
	protected.GET("/breathing-exercises/:id", cfg.BreathingHandler.Get)
	protected.PATCH("/breathing-exercises/:id", cfg.BreathingHandler.Update)
	protected.DELETE("/breathing-exercises/:id", cfg.BreathingHandler.Delete)

	protected.POST("/meditation-sessions", cfg.MeditationHandler.Create)
	protected.GET("/meditation-sessions", cfg.MeditationHandler.List)
	protected.GET("/meditation-sessions/:id", cfg.MeditationHandler.Get)
	protected.PATCH("/meditation-sessions/:id", cfg.MeditationHandler.Update)
	protected.DELETE("/meditation-sessions/:id", cfg.MeditationHandler.Delete)

	protected.POST("/combined-routines", cfg.CombinedHandler.Create)
	protected.GET("/combined-routines", cfg.CombinedHandler.List)
	protected.GET("/combined-routines/:id", cfg.CombinedHandler.Get)
	protected.PATCH("/combined-routines/:id", cfg.CombinedHandler.Update)
	protected.DELETE("/combined-routines/:id", cfg.CombinedHandler.Delete)

	protected.POST("/relationships", cfg.RelationshipHandler.Create)
	protected.GET("/relationships", cfg.RelationshipHandler.List)
	protected.GET("/relationships/:id", cfg.RelationshipHandler.Get)
	protected.DELETE("/relationships/:id", cfg.RelationshipHandler.Delete)
	protected.POST("/relationships/:id/routines", cfg.RelationshipHandler.AssignRoutine)
	protected.DELETE("/relationships/:id/routines/:routine_id", cfg.RelationshipHandler.RemoveRoutine)

	protected.POST("/progress", cfg.ProgressHandler.Record)
	protected.GET("/progress", cfg.ProgressHandler.List)
	protected.PATCH("/progress/:id", cfg.ProgressHandler.Update)

	protected.GET("/achievements", cfg.AchievementHandler.List)
	protected.POST("/achievements", cfg.AchievementHandler.Create)
	protected.GET("/achievements/earned", cfg.AchievementHandler.ListEarned)
	protected.POST("/achievements/check", cfg.AchievementHandler.Check)

	protected.GET("/media", cfg.MediaHandler.List)
	protected.GET("/media/:id", cfg.MediaHandler.Get)
	protected.DELETE("/media/:id", cfg.MediaHandler.Delete)

	protected.POST("/uploads/policy", cfg.UploadHandler.IssuePolicy)
	protected.POST("/uploads", cfg.UploadHandler.Upload)
	protected.GET("/uploads", cfg.UploadHandler.ListSessions)
	protected.GET("/uploads/storage", cfg.MediaHandler.ListStoredFiles)
	protected.DELETE("/uploads/storage", cfg.MediaHandler.BulkDelete)
	protected.GET("/uploads/:upload_id/progress", cfg.UploadHandler.GetProgress)
	protected.PATCH("/uploads/:upload_id/progress", cfg.UploadHandler.UpdateProgress)
	protected.POST("/uploads/:upload_id/verify", cfg.UploadHandler.Verify)

	return router
}

// ParseOrigins splits a comma separated origin list from the environment.
func ParseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
