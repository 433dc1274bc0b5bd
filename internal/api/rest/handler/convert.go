package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/zhconv/internal/dict"
	apierrors "github.com/palemoky/zhconv/internal/errors"
)

// bodyOverhead is the room left for JSON syntax around the text.
const bodyOverhead = 64 << 10

// ConvertRequest is the body of POST /convert. Either Text or Texts must be
// set; both may be.
type ConvertRequest struct {
	Text    *string  `json:"text"`
	Texts   []string `json:"texts"`
	Profile string   `json:"profile"`
	Explain bool     `json:"explain"`
}

// ConvertResponse carries the converted text.
type ConvertResponse struct {
	Profile string           `json:"profile"`
	Text    *string          `json:"text,omitempty"`
	Texts   []string         `json:"texts,omitempty"`
	Trace   [][]dict.Segment `json:"trace,omitempty"`
}

// ConvertHandler handles conversion requests
type ConvertHandler struct {
	profiles     Profiles
	maxTextBytes int
	maxBatch     int
}

// NewConvertHandler creates a new convert handler
func NewConvertHandler(profiles Profiles, maxTextBytes, maxBatch int) *ConvertHandler {
	return &ConvertHandler{
		profiles:     profiles,
		maxTextBytes: maxTextBytes,
		maxBatch:     maxBatch,
	}
}

// Convert handles POST /convert.
func (h *ConvertHandler) Convert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.maxTextBytes)+bodyOverhead)

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apierrors.TextTooLarge(h.maxTextBytes))
			return
		}
		respondError(c, apierrors.InvalidRequest("Invalid JSON body: "+err.Error()))
		return
	}

	h.handle(c, req)
}

// ConvertQuery handles GET /convert?text=...&profile=...&explain=true.
func (h *ConvertHandler) ConvertQuery(c *gin.Context) {
	var req ConvertRequest
	if text, ok := c.GetQuery("text"); ok {
		req.Text = &text
	}
	req.Profile = c.Query("profile")
	req.Explain = c.Query("explain") == "true"

	h.handle(c, req)
}

func (h *ConvertHandler) handle(c *gin.Context, req ConvertRequest) {
	if req.Text == nil && req.Texts == nil {
		respondError(c, apierrors.InvalidRequest("text or texts is required"))
		return
	}
	if len(req.Texts) > h.maxBatch {
		respondError(c, apierrors.InvalidRequest("too many texts in one request"))
		return
	}

	size := 0
	if req.Text != nil {
		size += len(*req.Text)
	}
	for _, text := range req.Texts {
		size += len(text)
	}
	if size > h.maxTextBytes {
		respondError(c, apierrors.TextTooLarge(h.maxTextBytes))
		return
	}

	name := req.Profile
	if name == "" {
		name = h.profiles.DefaultName()
	}
	conv, err := h.profiles.Get(name)
	if err != nil {
		respondError(c, profileError(name, err))
		return
	}

	resp := ConvertResponse{Profile: name}
	if req.Text != nil {
		converted := conv.Convert(*req.Text)
		resp.Text = &converted
		if req.Explain {
			resp.Trace = conv.Trace(*req.Text)
		}
	}
	if req.Texts != nil {
		resp.Texts = conv.ConvertArray(req.Texts)
	}

	respondOK(c, resp)
}
