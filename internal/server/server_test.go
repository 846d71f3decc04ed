package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sold2move/internal/config"
	"sold2move/internal/lookup"
	"sold2move/internal/middleware"
	"sold2move/internal/models"
	"sold2move/internal/skiptrace"
	"sold2move/internal/testutil"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:                env,
		ServerAddr:         ":0",
		CORSOrigins:        "*",
		RateLimitPerMinute: 100,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, auth *middleware.AuthMiddleware) (*Server, *testutil.Provider) {
	t.Helper()

	store := testutil.MemoryStore(t)
	provider := testutil.NewProvider(t, http.StatusOK, testutil.SkipTraceMatch)
	client, err := skiptrace.NewClient(skiptrace.ClientConfig{BaseURL: provider.URL(), APIKey: "k"})
	require.NoError(t, err)

	srv := New(cfg)
	t.Cleanup(func() { srv.accessLog.Close() })
	require.NoError(t, srv.RegisterRoutes(store, lookup.NewService(store, client), auth))
	return srv, provider
}

func doRequest(t *testing.T, app *fiber.App, method, path, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const lookupBody = `{"street":"123 Main St","city":"Austin","state":"TX","zip":"78701"}`

func TestRoutesRequireAuth(t *testing.T) {
	clients := &config.YAMLConfig{APIClients: []config.APIClientConfig{{Name: "crm", Token: "tok"}}}
	srv, provider := newTestServer(t, testConfig("production"), middleware.NewAuthMiddleware(clients, nil))

	for _, path := range []string{"/api/v1/homeowner-lookup", "/functions/v1/homeowner-lookup"} {
		resp := doRequest(t, srv.App, "POST", path, "", lookupBody)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)

		resp = doRequest(t, srv.App, "POST", path, "tok", lookupBody)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
	assert.Equal(t, 1, provider.Calls(), "second path hits the cache")

	resp := doRequest(t, srv.App, "GET", "/api/v1/lookups/0123456789abcdef0123456789abcdef", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Probes stay public
	resp = doRequest(t, srv.App, "GET", "/health", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doRequest(t, srv.App, "GET", "/metrics", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoutesAnonymousInDevelopment(t *testing.T) {
	srv, _ := newTestServer(t, testConfig("development"), middleware.NewAuthMiddleware(nil, nil))

	resp := doRequest(t, srv.App, "POST", "/api/v1/homeowner-lookup", "", lookupBody)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoutesRefuseUnauthenticatedProduction(t *testing.T) {
	store := testutil.MemoryStore(t)
	srv := New(testConfig("production"))
	t.Cleanup(func() { srv.accessLog.Close() })

	err := srv.RegisterRoutes(store, lookup.NewService(store, nil), middleware.NewAuthMiddleware(nil, nil))
	assert.Error(t, err)
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	srv, _ := newTestServer(t, testConfig("development"), nil)

	resp := doRequest(t, srv.App, "GET", "/no-such-route", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig("development")
	cfg.RateLimitPerMinute = 2
	srv, _ := newTestServer(t, cfg, nil)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, srv.App, "GET", "/health", "", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := doRequest(t, srv.App, "GET", "/health", "", "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
