package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/zhconv/internal/registry"
	"github.com/palemoky/zhconv/internal/testutil"
)

type convertBody struct {
	Data struct {
		Profile string   `json:"profile"`
		Text    *string  `json:"text"`
		Texts   []string `json:"texts"`
		Trace   [][]struct {
			Offset  int    `json:"offset"`
			Size    int    `json:"size"`
			Target  string `json:"target"`
			Matched bool   `json:"matched"`
		} `json:"trace"`
	} `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func setupConvertRouter(maxBytes int) *gin.Engine {
	reg := registry.New("", nil)
	reg.Register("demo", testutil.Converter("demo", map[string]string{"A": "B"}, map[string]string{"B": "C"}))

	h := NewConvertHandler(reg, maxBytes, 3)
	router := testutil.SetupTestGin()
	router.POST("/convert", h.Convert)
	router.GET("/convert", h.ConvertQuery)
	return router
}

func doConvert(t *testing.T, router http.Handler, req *http.Request) (int, convertBody) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body convertBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func post(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestConvertPost(t *testing.T) {
	router := setupConvertRouter(1 << 10)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, body convertBody)
	}{
		{
			name:       "default profile",
			body:       `{"text":"头发"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "s2t", body.Data.Profile)
				require.NotNil(t, body.Data.Text)
				assert.Equal(t, "頭髮", *body.Data.Text)
			},
		},
		{
			name:       "batch",
			body:       `{"texts":["中国","为"],"profile":"s2tw"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, []string{"中國", "為"}, body.Data.Texts)
				assert.Nil(t, body.Data.Text)
			},
		},
		{
			name:       "empty text is converted",
			body:       `{"text":"","profile":"t2s"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body convertBody) {
				require.NotNil(t, body.Data.Text)
				assert.Equal(t, "", *body.Data.Text)
			},
		},
		{
			name:       "stages apply in order",
			body:       `{"text":"AB","profile":"demo","explain":true}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "CC", *body.Data.Text)
				require.Len(t, body.Data.Trace, 2)
				assert.True(t, body.Data.Trace[0][0].Matched)
				assert.Equal(t, "B", body.Data.Trace[0][0].Target)
				assert.False(t, body.Data.Trace[0][1].Matched)
			},
		},
		{
			name:       "unknown profile",
			body:       `{"text":"中国","profile":"x2y"}`,
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "UNKNOWN_PROFILE", body.Error.Code)
			},
		},
		{
			name:       "missing text",
			body:       `{"profile":"s2t"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
			},
		},
		{
			name:       "malformed json",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
			},
		},
		{
			name:       "too many texts",
			body:       `{"texts":["a","b","c","d"]}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
			},
		},
		{
			name:       "text too large",
			body:       `{"text":"` + strings.Repeat("a", 1025) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "TEXT_TOO_LARGE", body.Error.Code)
			},
		},
		{
			name:       "body too large",
			body:       `{"text":"` + strings.Repeat("a", 1024+bodyOverhead) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			check: func(t *testing.T, body convertBody) {
				assert.Equal(t, "TEXT_TOO_LARGE", body.Error.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doConvert(t, router, post(tt.body))
			assert.Equal(t, tt.wantStatus, status)
			tt.check(t, body)
		})
	}
}

func TestConvertQuery(t *testing.T) {
	router := setupConvertRouter(1 << 10)

	q := url.Values{"text": {"乾隆乾淨"}, "profile": {"t2s"}}
	status, body := doConvert(t, router, httptest.NewRequest(http.MethodGet, "/convert?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "乾隆干净", *body.Data.Text)
	assert.Empty(t, body.Data.Trace)

	status, body = doConvert(t, router, httptest.NewRequest(http.MethodGet, "/convert", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
}
