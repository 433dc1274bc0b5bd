package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/api/middleware"
	"github.com/palemoky/zhconv/internal/converter"
)

// Profiles resolves profile names; implemented by registry.Registry.
type Profiles interface {
	Get(name string) (*converter.Converter, error)
	Names() []string
	DefaultName() string
}

// respondError sends the structured error body for err.
func respondError(c *gin.Context, err error) {
	middleware.Abort(c, err)
}

// respondOK sends a JSON success response with the given data.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}
