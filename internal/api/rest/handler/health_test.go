package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/loader"
	"github.com/palemoky/zhconv/internal/registry"
	"github.com/palemoky/zhconv/internal/testutil"
)

func TestHealthHandler(t *testing.T) {
	db, repo := testutil.SetupTestDB(t)
	cache := database.NewCachedRepository(repo)
	_, err := cache.SaveDictionary("custom", "", "", []loader.Rule{
		{Source: "头", Targets: []string{"頭"}},
		{Source: "头发", Targets: []string{"頭髮"}},
	}, 0)
	require.NoError(t, err)
	_, err = cache.BuildIndex("custom")
	require.NoError(t, err)

	tests := []struct {
		name           string
		handler        http.Handler
		expectedStatus int
		checkResponse  func(*testing.T, map[string]any)
	}{
		{
			name: "without store",
			handler: func() http.Handler {
				router := testutil.SetupTestGin()
				router.GET("/health", HealthHandler(registry.New("", nil), nil, nil))
				return router
			}(),
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, "healthy", resp["status"])
				assert.Equal(t, "s2t", resp["default_profile"])
				assert.NotContains(t, resp, "store")
			},
		},
		{
			name: "with store",
			handler: func() http.Handler {
				router := testutil.SetupTestGin()
				router.GET("/health", HealthHandler(registry.New("", cache), db, cache))
				return router
			}(),
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, "ok", resp["store"])
				assert.Equal(t, map[string]any{"indexes": float64(1), "entries": float64(2)}, resp["cache"])
			},
		},
		{
			name: "default profile missing",
			handler: func() http.Handler {
				router := testutil.SetupTestGin()
				router.GET("/health", HealthHandler(registry.New("nope", nil), nil, nil))
				return router
			}(),
			expectedStatus: http.StatusServiceUnavailable,
			checkResponse: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, "unhealthy", resp["status"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			tt.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse != nil {
				var response map[string]any
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				tt.checkResponse(t, response)
			}
		})
	}
}
