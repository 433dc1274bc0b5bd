package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/dict"
	apierrors "github.com/palemoky/zhconv/internal/errors"
	"github.com/palemoky/zhconv/internal/registry"
)

// ProfileInfo describes one conversion profile.
type ProfileInfo struct {
	Name    string       `json:"name"`
	Title   string       `json:"title,omitempty"`
	Default bool         `json:"default"`
	Stages  []dict.Stats `json:"stages"`
}

// ProfileHandler handles profile listing
type ProfileHandler struct {
	profiles Profiles
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ListProfiles returns every profile with per-stage statistics. Profiles
// that fail to build are left out.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	names := h.profiles.Names()
	infos := make([]ProfileInfo, 0, len(names))
	for _, name := range names {
		conv, err := h.profiles.Get(name)
		if err != nil {
			_ = c.Error(err)
			continue
		}
		infos = append(infos, ProfileInfo{
			Name:    name,
			Title:   conv.Name(),
			Default: name == h.profiles.DefaultName(),
			Stages:  conv.Stats(),
		})
	}

	respondOK(c, infos)
}

// GetProfile returns one profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	name := c.Param("name")
	conv, err := h.profiles.Get(name)
	if err != nil {
		respondError(c, profileError(name, err))
		return
	}

	respondOK(c, ProfileInfo{
		Name:    name,
		Title:   conv.Name(),
		Default: name == h.profiles.DefaultName(),
		Stages:  conv.Stats(),
	})
}

func profileError(name string, err error) error {
	if errors.Is(err, registry.ErrUnknownProfile) {
		return apierrors.UnknownProfile(name)
	}
	return err
}
