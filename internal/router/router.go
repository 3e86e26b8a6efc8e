package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kursio/kursio-backend/internal/config"
	"github.com/kursio/kursio-backend/internal/handler"
	"github.com/kursio/kursio-backend/internal/middleware"
	"github.com/kursio/kursio-backend/internal/response"
	"github.com/kursio/kursio-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Video       *handler.VideoHandler
	Question    *handler.QuestionHandler
	Quiz        *handler.QuizHandler
	Progress    *handler.ProgressHandler
	Certificate *handler.CertificateHandler
	Media       *handler.MediaHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.GetProfile)
		auth.PUT("/me", middleware.RequireUserJWT(authService), handlers.Auth.UpdateProfile)
	}

	// ─── 2. Learner Group (JWT) ────────────────────────────────────────
	learnerAPI := router.Group("/api/v1")
	learnerAPI.Use(middleware.RequireUserJWT(authService))
	{
		learnerAPI.GET("/videos", handlers.Video.GetLobby)
		learnerAPI.GET("/videos/:id/can-attempt", handlers.Video.CanAttempt)
		learnerAPI.GET("/videos/:id/questions", handlers.Question.GetForLearner)
		learnerAPI.GET("/videos/:id/attempts", handlers.Quiz.ListByVideo)

		learnerAPI.POST("/attempts", handlers.Quiz.Start)
		learnerAPI.GET("/attempts/:id", handlers.Quiz.GetResult)
		learnerAPI.GET("/attempts/:id/state", handlers.Quiz.GetState)
		learnerAPI.POST("/attempts/:id/answers", handlers.Quiz.SubmitAnswer)
		learnerAPI.POST("/attempts/:id/finish", handlers.Quiz.Finish)
		learnerAPI.PUT("/attempts/:id/timer", handlers.Quiz.UpdateTimer)

		learnerAPI.GET("/progress/me", handlers.Progress.GetMine)

		learnerAPI.GET("/certificates/me", handlers.Certificate.GetMine)
		learnerAPI.POST("/certificates", handlers.Certificate.Generate)
		learnerAPI.POST("/certificates/:id/download", handlers.Certificate.Download)
	}

	// ─── 3. Admin Group (JWT + Superadmin) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireUserJWT(authService), middleware.RequireSuperadmin())
	{
		// Media upload
		adminAPI.POST("/media/upload", handlers.Media.UploadMedia)

		// User management
		adminAPI.GET("/users", handlers.User.GetAll)
		adminAPI.POST("/users", handlers.User.Create)
		adminAPI.GET("/users/:id", handlers.User.GetByID)
		adminAPI.DELETE("/users/:id", handlers.User.Delete)

		// Video management
		adminAPI.GET("/videos", handlers.Video.GetAll)
		adminAPI.POST("/videos", handlers.Video.Create)
		adminAPI.GET("/videos/:id", handlers.Video.GetByID)
		adminAPI.PUT("/videos/:id", handlers.Video.Update)
		adminAPI.DELETE("/videos/:id", handlers.Video.Delete)

		// Question management
		adminAPI.GET("/videos/:id/questions", handlers.Question.GetAll)
		adminAPI.POST("/videos/:id/questions", handlers.Question.Create)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Ledger administration
		adminAPI.DELETE("/attempts/:id", handlers.Progress.DeleteAttempt)

		// Progress administration
		adminAPI.GET("/progress/export", handlers.Progress.Export)
		adminAPI.POST("/progress/recalculate", handlers.Progress.RecalculateAll)
		adminAPI.GET("/progress/:id", handlers.Progress.GetByUser)
		adminAPI.DELETE("/progress/:id", handlers.Progress.Reset)

		// Certificates
		adminAPI.GET("/certificates", handlers.Certificate.GetAll)
	}

	return router
}
