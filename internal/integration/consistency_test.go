package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/zhconv/internal/api/rest"
	"github.com/palemoky/zhconv/internal/config"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/dicts"
	"github.com/palemoky/zhconv/internal/loader"
	"github.com/palemoky/zhconv/internal/registry"
	"github.com/palemoky/zhconv/internal/testutil"
)

var samples = []string{
	"床前明月光，疑是地上霜。举头望明月，低头思故乡。",
	"春眠不觉晓，处处闻啼鸟。",
	"头发很长的人在面条店里吃面",
	"测试text混合123内容",
	"",
}

// setupTestEnv creates the REST router backed by a registry with a store.
func setupTestEnv(t *testing.T) (*gin.Engine, *registry.Registry, *database.Repository) {
	db, repo := testutil.SetupTestDB(t)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		Convert: config.ConvertConfig{MaxTextBytes: 1 << 20, MaxBatch: 100},
	}
	reg := registry.New(dicts.ProfileS2T, repo)
	router := rest.SetupRouter(cfg, reg, rest.Store{DB: db, Repo: repo})

	return router, reg, repo
}

func restConvert(t *testing.T, router http.Handler, profile string, texts []string) []string {
	t.Helper()

	body, err := json.Marshal(map[string]any{"profile": profile, "texts": texts})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Texts []string `json:"texts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Texts
}

// TestRESTMatchesCore checks that every surface produces the same output.
func TestRESTMatchesCore(t *testing.T) {
	router, _, _ := setupTestEnv(t)

	for _, profile := range dicts.Names() {
		t.Run(profile, func(t *testing.T) {
			conv, err := dicts.Get(profile)
			require.NoError(t, err)

			want := conv.ConvertArray(samples)
			assert.Equal(t, want, restConvert(t, router, profile, samples))

			var out strings.Builder
			err = conv.ConvertReader(context.Background(), strings.NewReader(strings.Join(samples, "\n")), &out)
			require.NoError(t, err)
			assert.Equal(t, strings.Join(want, "\n"), out.String())
		})
	}
}

// TestStoreMatchesText checks that a dictionary compiled into the store
// converts exactly like the text file it came from.
func TestStoreMatchesText(t *testing.T) {
	router, _, repo := setupTestEnv(t)

	fsys := dicts.FS()
	var rules []loader.Rule
	for _, name := range []string{"STPhrases.txt", "STCharacters.txt"} {
		f, err := fsys.Open(name)
		require.NoError(t, err)
		parsed, err := loader.ParseRules(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
		rules = append(rules, parsed...)
	}

	_, err := repo.SaveDictionary("st", "", "embedded", rules, 500)
	require.NoError(t, err)

	// s2t is a single stage built from the same two files
	want := dicts.S2T().ConvertArray(samples)
	assert.Equal(t, want, restConvert(t, router, registry.StorePrefix+"st", samples))
}

func TestProfilesListed(t *testing.T) {
	router, _, repo := setupTestEnv(t)
	_, err := repo.SaveDictionary("custom", "", "", []loader.Rule{{Source: "a", Targets: []string{"b"}}}, 0)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var names []string
	for _, p := range resp.Data {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"s2t", "s2tw", "store:custom", "t2s", "tw2s"}, names)
}

func TestRateLimited(t *testing.T) {
	_, repo := testutil.SetupTestDB(t)
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1},
		Convert:   config.ConvertConfig{MaxTextBytes: 1 << 10, MaxBatch: 10},
	}
	router := rest.SetupRouter(cfg, registry.New("", repo), rest.Store{Repo: repo})

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/convert?text=%E5%8F%91", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
