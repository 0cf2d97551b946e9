package routes

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/container"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
)

const (
	testSecret = "routes-test-secret"
	demoOwner  = "demo-owner"
)

type apiFixture struct {
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	tc := database.NewTableCreator()
	require.NoError(t, tc.CreateSchema(db))
	seeded, err := tc.SeedDemoWardrobe(db, demoOwner)
	require.NoError(t, err)
	require.True(t, seeded)

	logger := logging.NewNopLogger()
	c := container.NewContainer(db, manager.NewManagerWithTTL(time.Hour, time.Hour, logger), logger, performance.NewTracker(nil, logger))
	c.JWTSecret = testSecret

	token, err := security.GenerateOwnerToken(demoOwner, testSecret, time.Hour)
	require.NoError(t, err)
	return &apiFixture{router: SetupRoutes(c), token: token}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["database"])
}

func TestAPIRequiresToken(t *testing.T) {
	f := newAPI(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolvedOutfitsForSeededOwner(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/outfits/resolved", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	assert.Equal(t, false, body["isError"])
	assert.EqualValues(t, 4, body["resolvedCount"])
	assert.EqualValues(t, 1, body["missingCount"])
	assert.Len(t, body["resolvedOutfits"], 3)
	assert.Len(t, body["uncachedIds"], 1)

	w = f.do(t, http.MethodGet, "/api/v1/outfits/resolved?enabled=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["resolvedOutfits"])

	w = f.do(t, http.MethodGet, "/api/v1/outfits/resolved?enabled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveAdHocOutfits(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 4)
	firstID := items[0].(map[string]any)["id"].(string)

	w = f.do(t, http.MethodPost, "/api/v1/outfits/resolve", map[string]any{
		"outfits": []map[string]any{
			{"id": "draft", "itemIds": []any{firstID, 42, "unknown-id"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	draft := body["resolvedOutfits"].(map[string]any)["draft"].([]any)
	require.Len(t, draft, 2)
	assert.Equal(t, "resolved", draft[0].(map[string]any)["status"])
	assert.Equal(t, "missing", draft[1].(map[string]any)["status"])
	assert.Equal(t, "Unknown item", draft[1].(map[string]any)["displayName"])
}

func TestItemLifecycle(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/api/v1/items", map[string]any{
		"name": "Rain jacket", "type": "jacket", "colour": []string{"olive"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodPost, "/api/v1/items/batch", map[string]any{"itemIds": []string{id, "nope"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, []any{"nope"}, body["missingIds"])

	w = f.do(t, http.MethodPut, "/api/v1/items/"+id, map[string]any{"name": "Shell jacket"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Shell jacket", decode(t, w)["name"])

	w = f.do(t, http.MethodDelete, "/api/v1/items/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOutfitCreateAndCacheEndpoints(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/api/v1/outfits", map[string]any{"title": "Empty", "itemIds": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/outfits", map[string]any{"title": "Gym", "itemIds": []any{"x"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = f.do(t, http.MethodGet, "/api/v1/outfits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["count"])

	w = f.do(t, http.MethodGet, "/api/v1/outfits/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	one := decode(t, w)
	assert.Equal(t, "Gym", one["outfit"].(map[string]any)["title"])
	resolved := one["resolution"].(map[string]any)
	assert.EqualValues(t, 1, resolved["missingCount"])
	assert.Len(t, resolved["resolvedOutfits"], 1)

	w = f.do(t, http.MethodGet, "/api/v1/outfits/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "cache")

	w = f.do(t, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/outfits/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodDelete, "/api/v1/outfits/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
