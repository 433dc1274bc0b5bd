package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/api/middleware"
	"github.com/palemoky/zhconv/internal/api/rest/handler"
	"github.com/palemoky/zhconv/internal/config"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/logger"
)

// Store is the compiled dictionary store; both fields are nil when none is
// configured.
type Store struct {
	DB   *database.DB
	Repo database.RepositoryInterface
}

// SetupRouter sets up the Gin router with all routes
func SetupRouter(cfg *config.Config, profiles handler.Profiles, store Store) *gin.Engine {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	log := logger.Named("http")

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	// CORS middleware
	router.Use(middleware.CORS())

	// Rate limiting middleware
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(rateLimiter.Middleware())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check
		cache, _ := store.Repo.(handler.CacheStats)
		v1.GET("/health", handler.HealthHandler(profiles, store.DB, cache))

		// Profile routes
		profileHandler := handler.NewProfileHandler(profiles)
		v1.GET("/profiles", profileHandler.ListProfiles)
		v1.GET("/profiles/:name", profileHandler.GetProfile)

		// Conversion routes
		convertHandler := handler.NewConvertHandler(profiles, cfg.Convert.MaxTextBytes, cfg.Convert.MaxBatch)
		v1.POST("/convert", convertHandler.Convert)
		v1.GET("/convert", convertHandler.ConvertQuery)

		// Dictionary store routes
		dictHandler := handler.NewDictHandler(store.Repo)
		v1.GET("/dicts", dictHandler.ListDictionaries)
		v1.GET("/dicts/:name", dictHandler.GetDictionary)
	}

	return router
}
