package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/LilVoxy/smart_hydration/insights"
	lr "github.com/LilVoxy/smart_hydration/linear_regression"
	"github.com/LilVoxy/smart_hydration/scenarios"
	"github.com/LilVoxy/smart_hydration/service"
	"github.com/LilVoxy/smart_hydration/websocket"
)

func newTestRouter(t *testing.T, store scenarios.Store) *mux.Router {
	t.Helper()
	model, stats, err := lr.NewTrainer(nil, lr.DefaultConfig()).Train()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	manager := websocket.NewManager(nil)
	go manager.Run(ctx)

	svc, err := service.New(model, stats, store, service.Options{AppName: "Išmanioji Hidratacija – Demo", Notifier: manager})
	require.NoError(t, err)
	return NewRouter(svc, manager, nil)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPredict_ReferenceRequest(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore())

	body := `{"vandens_ml":2100,"zingsniai":9000,"sirdies_ritmas":68,"stresas":4,"miegas_val":7.5,"temperatura_c":20,"aktyvumas_min":60}`
	rec := do(t, router, http.MethodPost, "/api/predict", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["ok"])
	res := out["rezultatas"].(map[string]any)
	assert.IsType(t, float64(0), res["hidratacijos_indeksas"])

	si := res["stress_insights"].(map[string]any)
	assert.Equal(t, string(insights.LevelLow), si["lygis"])
	assert.Equal(t, []any{}, si["rekomendacijos"])
}

func TestPredict_EdgeCases(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore())

	for _, body := range []string{"", "null", "{}"} {
		rec := do(t, router, http.MethodPost, "/api/predict", strings.NewReader(body))
		require.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		res := decode(t, rec)["rezultatas"].(map[string]any)
		assert.Equal(t, 2000.0, res["ivestis"].(map[string]any)["vandens_ml"])
	}

	for _, body := range []string{`{"vandens_ml":"daug"}`, `[1,2]`, `{oops`} {
		rec := do(t, router, http.MethodPost, "/api/predict", strings.NewReader(body))
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		out := decode(t, rec)
		assert.Equal(t, false, out["ok"])
		assert.NotEmpty(t, out["klaida"])
	}
}

func TestHealthStatsDocs(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore())

	health := decode(t, do(t, router, http.MethodGet, "/api/health", nil))
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, service.ModelName, health["model"])
	assert.Equal(t, "Išmanioji Hidratacija – Demo", health["app"])

	stats := decode(t, do(t, router, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, 30.0, stats["irasu_skaicius"])
	assert.Len(t, stats["pozymiai"], lr.NumFeatures)
	assert.Contains(t, stats, "etikete")
	assert.Contains(t, stats, "metrikos")

	docs := decode(t, do(t, router, http.MethodGet, "/api/docs", nil))
	endpoints := docs["endpoints"].(map[string]any)
	assert.Contains(t, endpoints, "POST /api/predict")
	assert.Contains(t, endpoints, "GET /ws/predict")
}

func TestScenarioEndpoints(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore(scenarios.Defaults()...))

	list := func() []any {
		return decode(t, do(t, router, http.MethodGet, "/api/scenarios", nil))["scenarios"].([]any)
	}
	require.Len(t, list(), 3)

	rec := do(t, router, http.MethodPost, "/api/scenarios",
		strings.NewReader(`{"name":"  Mano diena ","payload":{"stresas":2}}`))
	require.Equal(t, http.StatusOK, rec.Code)
	items := list()
	require.Len(t, items, 4)
	assert.Equal(t, "Mano diena", items[3].(map[string]any)["name"])

	rec = do(t, router, http.MethodPost, "/api/scenarios", strings.NewReader(`{"name":"   "}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"ok": false, "error": "name required"}, decode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/scenarios", strings.NewReader(`{"name":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid JSON")

	for _, body := range []string{`{"name":"X","payload":"daug"}`, `{"name":"X","payload":[1,2]}`} {
		rec = do(t, router, http.MethodPost, "/api/scenarios", strings.NewReader(body))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, map[string]any{"ok": false, "error": "payload must be an object"}, decode(t, rec))
	}

	rec = do(t, router, http.MethodPost, "/api/scenarios", strings.NewReader(`{"name":5}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name must be a string", decode(t, rec)["error"])
	assert.Len(t, list(), 4)

	rec = do(t, router, http.MethodDelete, "/api/scenarios/Mano%20diena", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true}, decode(t, rec))
	assert.Len(t, list(), 3)

	// Отсутствующий сценарий тоже ok
	rec = do(t, router, http.MethodDelete, "/api/scenarios/n%C4%97ra", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true, "count": 3.0}, decode(t, rec))
}

func TestDeleteScenario_SlashInName(t *testing.T) {
	store := scenarios.NewMemoryStore(scenarios.Scenario{Name: "a/b", Payload: scenarios.Payload{}})
	router := newTestRouter(t, store)

	rec := do(t, router, http.MethodDelete, "/api/scenarios/a%2Fb", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExportImport(t *testing.T) {
	src := newTestRouter(t, scenarios.NewMemoryStore(scenarios.Defaults()...))
	dst := newTestRouter(t, scenarios.NewMemoryStore())

	rec := do(t, src, http.MethodGet, "/api/scenarios/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scenarios.ArchiveContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json.sz")

	rec = do(t, dst, http.MethodPost, "/api/scenarios/import", bytes.NewReader(rec.Body.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"ok": true, "count": 3.0}, decode(t, rec))

	rec = do(t, dst, http.MethodPost, "/api/scenarios/import", strings.NewReader("not snappy"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSAndRequestID(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore())

	rec := do(t, router, http.MethodOptions, "/api/scenarios/abc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	rec = do(t, router, http.MethodGet, "/api/health", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestIndexAndFavicon(t *testing.T) {
	router := newTestRouter(t, scenarios.NewMemoryStore())

	rec := do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Išmanioji Hidratacija")
	assert.Contains(t, rec.Body.String(), `name="vandens_ml"`)

	rec = do(t, router, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoggingMiddleware_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestIDMiddleware(LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := do(t, h, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])

	require.Equal(t, 1, logs.FilterMessage("Паника при обработке запроса").Len())
	entry := logs.FilterMessage("HTTP запрос").All()
	require.Len(t, entry, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entry[0].ContextMap()["status"])
}
