package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/logger"
	"estate-assistant/internal/inventory"
)

const watchContext = "Current assets: Watch (Collectible) - $10,000 - Location: Vault, Car (Vehicle) - $40,000 - Location: Garage"

type stubProvider struct {
	name       string
	configured bool
	reply      string
	err        error
}

func (p *stubProvider) Name() string        { return p.name }
func (p *stubProvider) DisplayName() string { return strings.ToUpper(p.name) }
func (p *stubProvider) Configured() bool    { return p.configured }
func (p *stubProvider) Generate(context.Context, string, string) (string, error) {
	return p.reply, p.err
}

type stubInventory struct {
	contexts map[string]string
	err      error
}

func (s *stubInventory) ContextFor(_ context.Context, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	c, ok := s.contexts[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", inventory.ErrInventoryNotFound, id)
	}
	return c, nil
}

func newTestServer(t *testing.T, inv ContextSource, checks ...Check) *Server {
	t.Helper()
	reg, err := assistant.NewRegistry(
		&stubProvider{name: "huggingface", configured: true, err: fmt.Errorf("%w: 503", assistant.ErrUpstreamStatus)},
		&stubProvider{name: "openai", configured: true, reply: "generated by openai"},
		&stubProvider{name: "offline", configured: false},
	)
	require.NoError(t, err)
	selector, err := assistant.NewSelector(reg, "huggingface")
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	engine := assistant.NewEngine(assistant.EngineConfig{Timeout: time.Second}, selector, nil, nil, log)
	return New(Options{
		Config:    config.ServerConfig{Address: ":0"},
		Engine:    engine,
		Inventory: inv,
		Checks:    checks,
		Logger:    log,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerate_FallbackReply(t *testing.T) {
	s := newTestServer(t, nil)

	body := fmt.Sprintf(`{"prompt":"Where is the Watch?","context":%q}`, watchContext)
	rec := do(t, s, http.MethodPost, "/api/ai", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["response"], "Vault")
	assert.Equal(t, "rules", rec.Header().Get("X-Assistant-Source"))
	assert.Equal(t, "bad_status", rec.Header().Get("X-Assistant-Fallback"))
	assert.Equal(t, "location", rec.Header().Get("X-Assistant-Category"))
}

func TestGenerate_PerRequestProvider(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/ai", `{"prompt":"hello","provider":"openai"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "generated by openai", decode(t, rec)["response"])

	rec = do(t, s, http.MethodGet, "/api/ai/providers", "")
	assert.Equal(t, "huggingface", decode(t, rec)["current"], "per-request provider leaves the default alone")
}

func TestGenerate_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing prompt", `{"context":"x"}`, http.StatusBadRequest, "Prompt is required"},
		{"empty prompt", `{"prompt":""}`, http.StatusBadRequest, "Prompt is required"},
		{"blank prompt", `{"prompt":"   "}`, http.StatusBadRequest, "Prompt is required"},
		{"unknown provider", `{"prompt":"hi","provider":"claude"}`, http.StatusBadRequest, "Invalid provider specified"},
		{"wrong type", `{"prompt":"hi","context":7}`, http.StatusBadRequest, "Invalid request body"},
		{"not json", `prompt=hi`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/ai", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
		})
	}
}

func TestGenerate_InventoryContext(t *testing.T) {
	inv := &stubInventory{contexts: map[string]string{"inv-1": watchContext}}
	s := newTestServer(t, inv)

	rec := do(t, s, http.MethodPost, "/api/ai", `{"prompt":"How much is the car worth?","inventoryId":"inv-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["response"], "$40,000")

	rec = do(t, s, http.MethodPost, "/api/ai", `{"prompt":"How much is the car worth?","inventoryId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	explicit := `Current assets: Car (Vehicle) - $1 - Location: Street`
	rec = do(t, s, http.MethodPost, "/api/ai", fmt.Sprintf(`{"prompt":"How much is the car worth?","inventoryId":"inv-1","context":%q}`, explicit))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["response"], "$1", "explicit context wins")
}

func TestGenerate_InventoryFailure(t *testing.T) {
	s := newTestServer(t, &stubInventory{err: fmt.Errorf("%w: connection refused", inventory.ErrQueryFailed)})

	rec := do(t, s, http.MethodPost, "/api/ai", `{"prompt":"hello","inventoryId":"inv-1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INVENTORY_LOOKUP_FAILED", decode(t, rec)["code"])
}

func TestProviders(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/ai/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp providersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "huggingface", resp.Current)
	require.Len(t, resp.Providers, 3)
	assert.Equal(t, assistant.ProviderInfo{ID: "offline", Name: "OFFLINE", Configured: false}, resp.Providers[1])
}

func TestSetProvider(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPut, "/api/ai/provider", `{"provider":"openai"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openai", decode(t, rec)["current"])

	rec = do(t, s, http.MethodPost, "/api/ai", `{"prompt":"hello"}`)
	assert.Equal(t, "generated by openai", decode(t, rec)["response"])

	rec = do(t, s, http.MethodPut, "/api/ai/provider", `{"provider":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid provider specified", decode(t, rec)["error"])

	rec = do(t, s, http.MethodPut, "/api/ai/provider", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/ai/providers", "")
	assert.Equal(t, "openai", decode(t, rec)["current"], "rejected change keeps the previous default")
}

func TestHealthAndReady(t *testing.T) {
	healthy := Check{Name: "postgres", Probe: func(context.Context) error { return nil }}
	s := newTestServer(t, nil, healthy)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])

	failing := Check{Name: "redis", Probe: func(context.Context) error { return errors.New("dial tcp: refused") }}
	s = newTestServer(t, nil, healthy, failing)
	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "dial tcp: refused", body["checks"].(map[string]interface{})["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/ai", `{"prompt":"hello"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assistant_replies_total")
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", "")
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
}

func TestRouteLabel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/random/abc123", nil)
	assert.Equal(t, unmatchedRoute, routeLabel(req), "no routing context")

	rctx := chi.NewRouteContext()
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	assert.Equal(t, unmatchedRoute, routeLabel(req), "no pattern matched")

	rctx.RoutePatterns = []string{"/health"}
	assert.Equal(t, "/health", routeLabel(req))
}

func TestUnknownPathIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/random/abc123", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
