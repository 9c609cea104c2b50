package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ferretcode/lovebug/internal/api"
	"github.com/ferretcode/lovebug/internal/auth"
	"github.com/ferretcode/lovebug/internal/bootstrap"
	"github.com/ferretcode/lovebug/internal/cache"
	"github.com/ferretcode/lovebug/internal/dashboard"
	"github.com/ferretcode/lovebug/internal/location"
	"github.com/ferretcode/lovebug/internal/store"
	"github.com/ferretcode/lovebug/internal/types"
	"github.com/ferretcode/lovebug/internal/websocket"
	pkgtypes "github.com/ferretcode/lovebug/pkg/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubStore struct {
	statsCalls int
}

func (s *stubStore) List(ctx context.Context, q store.ReportQuery) ([]types.Report, error) {
	return []types.Report{}, nil
}

func (s *stubStore) Get(ctx context.Context, id string) (*types.Report, error) {
	return nil, store.ErrReportNotFound
}

func (s *stubStore) Search(ctx context.Context, q store.SearchQuery) ([]types.Report, error) {
	return []types.Report{}, nil
}

func (s *stubStore) Stats(ctx context.Context, hours int) (*types.Stats, error) {
	s.statsCalls++
	return &types.Stats{TotalReports: 1}, nil
}

func (s *stubStore) Hotspots(ctx context.Context, limit int, radius float64, hours int) ([]types.HotSpot, error) {
	return []types.HotSpot{}, nil
}

func (s *stubStore) Districts(ctx context.Context, hours int) ([]types.DistrictSummary, error) {
	return []types.DistrictSummary{}, nil
}

func (s *stubStore) Ping(ctx context.Context) error { return nil }

type stubCrawler struct{}

func (stubCrawler) CrawlAndUpdate(ctx context.Context) (int, error) { return 3, nil }

type stubSeeder struct{}

func (stubSeeder) Seed(ctx context.Context, count int, keep bool) (bootstrap.SeedResult, error) {
	return bootstrap.SeedResult{Inserted: count}, nil
}

type stubScheduler struct{}

func (stubScheduler) Running() bool { return true }

func newTestRouter(t *testing.T, config *pkgtypes.LovebugConfig) (http.Handler, *stubStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	responses := cache.NewRedisCache(rdb, time.Minute, discardLogger)

	reports := &stubStore{}
	hub := websocket.NewHub(config.AllowedOrigins, discardLogger)
	t.Cleanup(hub.Close)

	handler := api.NewHandler(
		reports,
		dashboard.New(config, reports, responses, stubScheduler{}, hub),
		location.NewExtractor(),
		stubCrawler{},
		stubSeeder{},
		responses,
		discardLogger,
	)

	return newRouter(routerDeps{
		config:  config,
		handler: handler,
		auth:    auth.NewAuthService(config.AdminApiKey, discardLogger),
		hub:     hub,
		cache:   responses,
		logger:  discardLogger,
	}), reports
}

func testConfig(t *testing.T) *pkgtypes.LovebugConfig {
	return &pkgtypes.LovebugConfig{
		Port:           "8000",
		AllowedOrigins: []string{"*"},
		Environment:    "test",
		StaticDir:      filepath.Join(t.TempDir(), "missing"),
	}
}

func get(router http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func post(router http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Healthz(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	rec := get(router, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRoutes_Health(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	rec := get(router, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mongodb":"connected"`)
	assert.Contains(t, rec.Body.String(), `"redis":"connected"`)
}

func TestRoutes_API(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	for _, target := range []string{
		"/",
		"/api/v1/reports",
		"/api/v1/search?keyword=test",
		"/api/v1/hotspots",
		"/api/v1/districts",
		"/api/v1/locations/nearby?latitude=37.5&longitude=127",
	} {
		assert.Equal(t, http.StatusOK, get(router, target, nil).Code, target)
	}

	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/reports/abc", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, get(router, "/api/v1/stats?hours=500", nil).Code)
}

func TestRoutes_StatsCached(t *testing.T) {
	router, reports := newTestRouter(t, testConfig(t))

	first := get(router, "/api/v1/stats?hours=24", nil)
	require.Equal(t, http.StatusOK, first.Code)
	second := get(router, "/api/v1/stats?hours=24", nil)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, reports.statsCalls)

	// seeding invalidates cached responses
	config := testConfig(t)
	config.AdminApiKey = "secret"
	router, reports = newTestRouter(t, config)

	get(router, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, post(router, "/api/v1/admin/seed?count=3", map[string]string{auth.HeaderAPIKey: "secret"}).Code)
	get(router, "/api/v1/stats", nil)
	assert.Equal(t, 2, reports.statsCalls)
}

func TestRoutes_Admin(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))
	assert.Equal(t, http.StatusNotFound, post(router, "/api/v1/admin/crawl", nil).Code)

	config := testConfig(t)
	config.AdminApiKey = "secret"
	router, _ = newTestRouter(t, config)

	assert.Equal(t, http.StatusUnauthorized, post(router, "/api/v1/admin/crawl", nil).Code)

	rec := post(router, "/api/v1/admin/crawl", map[string]string{auth.HeaderAPIKey: "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":3}`, rec.Body.String())
}

func TestRoutes_CORS(t *testing.T) {
	config := testConfig(t)
	config.AllowedOrigins = []string{"https://lovebug-map.vercel.app"}
	router, _ := newTestRouter(t, config)

	rec := get(router, "/api/v1/reports", map[string]string{"Origin": "https://lovebug-map.vercel.app"})
	assert.Equal(t, "https://lovebug-map.vercel.app", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = get(router, "/api/v1/reports", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>lovebug</h1>"), 0o644))

	config := testConfig(t)
	config.StaticDir = dir
	router, _ := newTestRouter(t, config)

	rec := get(router, "/static/index.html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("lovebug")))

	router, _ = newTestRouter(t, testConfig(t))
	assert.Equal(t, http.StatusNotFound, get(router, "/static/index.html", nil).Code)
}

func TestKeygenCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"keygen"})

	require.NoError(t, cmd.Execute())
	assert.Len(t, bytes.TrimSpace(out.Bytes()), 64)
}

func TestSortedCounts(t *testing.T) {
	rows := sortedCounts(map[string]int{"마포구": 2, "강남구": 5, "중구": 2})
	require.Len(t, rows, 3)
	assert.Equal(t, "강남구", rows[0].key)
	assert.Equal(t, "마포구", rows[1].key)
	assert.Equal(t, "중구", rows[2].key)
}
