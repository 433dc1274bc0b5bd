package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/database"
)

// CacheStats is implemented by database.CachedRepository.
type CacheStats interface {
	GetCacheStats() map[string]int
}

// HealthHandler handles health check requests. db and cache are nil when no
// store is configured.
func HealthHandler(profiles Profiles, db *database.DB, cache CacheStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := profiles.Get(""); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "default profile unavailable",
			})
			return
		}

		resp := gin.H{
			"status":          "healthy",
			"default_profile": profiles.DefaultName(),
		}

		if db != nil {
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  "database connection failed",
				})
				return
			}
			resp["store"] = "ok"
		}
		if cache != nil {
			resp["cache"] = cache.GetCacheStats()
		}

		c.JSON(http.StatusOK, resp)
	}
}
