// Package middleware provides the gin middleware of the HTTP service.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/palemoky/zhconv/internal/errors"
)

// Abort writes err as the structured error body and stops the chain.
// Errors that are not an *APIError become INTERNAL_ERROR.
func Abort(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		_ = c.Error(err)
		apiErr = apierrors.ErrInternal
	}
	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{"error": apiErr})
}

// CORS allows cross-origin reads and JSON posts from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Logger logs one line per request with zap.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request", fields...)
		}
	}
}

// Recovery turns panics into INTERNAL_ERROR responses and logs them.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		Abort(c, apierrors.ErrInternal)
	})
}
