package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/database"
	apierrors "github.com/palemoky/zhconv/internal/errors"
)

// DictHandler exposes the compiled dictionary store
type DictHandler struct {
	repo database.RepositoryInterface
}

// NewDictHandler creates a new dictionary handler. repo may be nil.
func NewDictHandler(repo database.RepositoryInterface) *DictHandler {
	return &DictHandler{repo: repo}
}

// ListDictionaries returns store statistics and every stored dictionary.
func (h *DictHandler) ListDictionaries(c *gin.Context) {
	if h.repo == nil {
		respondError(c, apierrors.ErrNoStore)
		return
	}

	stats, err := h.repo.GetStatistics()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, stats)
}

// GetDictionary returns one stored dictionary.
func (h *DictHandler) GetDictionary(c *gin.Context) {
	if h.repo == nil {
		respondError(c, apierrors.ErrNoStore)
		return
	}

	name := c.Param("name")
	d, err := h.repo.GetDictionary(name)
	if errors.Is(err, database.ErrDictionaryNotFound) {
		respondError(c, apierrors.NotFound("Dictionary "+name))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, d)
}
