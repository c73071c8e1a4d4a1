package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(cfg Config) *Server {
	return NewServer(cfg, Dependencies{})
}

func doRequest(s *Server, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthEnvelope(t *testing.T) {
	s := testServer(DefaultConfig())

	rec := doRequest(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)

	// Request ID always echoes back.
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_LiveAndReady(t *testing.T) {
	s := testServer(DefaultConfig())

	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/ready", nil).Code)
}

func TestServer_UserHeaderRequired(t *testing.T) {
	s := testServer(DefaultConfig())

	rec := doRequest(s, http.MethodGet, "/api/v1/match/cross", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "missing_user", resp.Error.Code)
}

func TestServer_AdminRoutesRequireKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminAPIKey = "secret"
	s := testServer(cfg)

	rec := doRequest(s, http.MethodGet, "/api/v1/admin/trust/scores", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/v1/admin/trust/scores", map[string]string{
		"X-API-Key": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AdminRoutesHiddenWithoutKey(t *testing.T) {
	// No configured key disables the admin surface entirely.
	s := testServer(DefaultConfig())

	rec := doRequest(s, http.MethodGet, "/api/v1/admin/trust/scores", map[string]string{
		"X-API-Key": "anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RequestIDPropagates(t *testing.T) {
	s := testServer(DefaultConfig())

	rec := doRequest(s, http.MethodGet, "/health", map[string]string{
		"X-Request-ID": "trace-123",
	})
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("caller"))
	}
	assert.False(t, rl.Allow("caller"))

	// Separate callers have separate budgets.
	assert.True(t, rl.Allow("other"))
}

func TestServer_RateLimitResponse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 1
	s := testServer(cfg)

	headers := map[string]string{"X-User-ID": "u1"}
	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/health", headers).Code)

	rec := doRequest(s, http.MethodGet, "/health", headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestServer_CORSPreflight(t *testing.T) {
	s := testServer(DefaultConfig())

	rec := doRequest(s, http.MethodOptions, "/api/v1/match/cross", map[string]string{
		"Origin": "https://app.example.com",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
