package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/voice-receptionist/internal/dashboard"
	httpmiddleware "github.com/wolfman30/voice-receptionist/internal/http/middleware"
	"github.com/wolfman30/voice-receptionist/internal/leads"
	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/internal/settings"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

const testSecret = "router-secret"

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	limiter := httpmiddleware.NewRateLimiter(100, 100)
	t.Cleanup(limiter.Stop)

	cfg := &Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leads.NewInMemoryRepository(), nil, metrics.NewContactMetrics(reg), logger),
		SettingsHandler:    settings.NewHandler(settings.NewMemoryStore(), logger),
		DashboardHandler:   dashboard.NewHandler(logger),
		AdminAuthSecret:    testSecret,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		ContactLimiter:     limiter,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRouterProbeEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode probe response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	healthy := newTestRouter(t, func(cfg *Config) {
		cfg.HealthChecks = map[string]HealthCheck{"redis": func(context.Context) error { return nil }}
	})
	if rr := serve(healthy, httptest.NewRequest(http.MethodGet, "/health", nil)); rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	degraded := newTestRouter(t, func(cfg *Config) {
		cfg.HealthChecks = map[string]HealthCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		}
	})
	rr := serve(degraded, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["postgres"] != "connection refused" || resp.Checks["redis"] != "ok" {
		t.Fatalf("unexpected health response %+v", resp)
	}

	// The probe endpoint stays up while dependencies are down.
	if rr := serve(degraded, httptest.NewRequest(http.MethodGet, "/test", nil)); rr.Code != http.StatusOK {
		t.Fatalf("expected /test to stay %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterContactEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"name":"Jane","email":"jane@example.com","source":"request-demo"}`
	req := httptest.NewRequest(http.MethodPost, "/contact/email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	rr := serve(router, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected CORS header, got %q", got)
	}
	var resp leads.ContactResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "sent" || resp.ID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	for _, payload := range []string{`{"source":"fax"}`, `{"email":"a@b.com","source":"send-email","extra":true}`} {
		bad := httptest.NewRequest(http.MethodPost, "/contact/email", strings.NewReader(payload))
		if rr := serve(router, bad); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected status %d, got %d", payload, http.StatusUnprocessableEntity, rr.Code)
		}
	}
}

func TestRouterContactPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/contact/email", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	if rr := serve(router, req); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestRouterContactRateLimited(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		limiter := httpmiddleware.NewRateLimiter(0.001, 1)
		t.Cleanup(limiter.Stop)
		cfg.ContactLimiter = limiter
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/contact/email", strings.NewReader(`{"email":"a@b.com","source":"quick-email"}`))
		req.RemoteAddr = "192.0.2.10:4000"
		return serve(router, req).Code
	}
	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request %d, got %d", http.StatusOK, code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request %d, got %d", http.StatusTooManyRequests, code)
	}
}

func TestRouterDashboardAndSettings(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/api/dashboard/overview", "/api/dashboard/calls", "/api/dashboard/calendar?days=7", "/api/settings"} {
		if rr := serve(router, httptest.NewRequest(http.MethodGet, path, nil)); rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected %d, got %d", path, http.StatusOK, rr.Code)
		}
	}

	put := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(`{"business_name":"Bright Smile","notifications":true}`))
	if rr := serve(router, put); rr.Code != http.StatusOK {
		t.Fatalf("PUT /api/settings: expected %d, got %d", http.StatusOK, rr.Code)
	}
	rr := serve(router, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	var got settings.Settings
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.BusinessName != "Bright Smile" || got.UpdatedAt == nil {
		t.Fatalf("settings not persisted: %+v", got)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/api/admin/overview", "/api/admin/leads"} {
		if rr := serve(router, httptest.NewRequest(http.MethodGet, path, nil)); rr.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected %d, got %d", path, http.StatusUnauthorized, rr.Code)
		}
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		if rr := serve(router, req); rr.Code != http.StatusOK {
			t.Fatalf("GET %s with token: expected %d, got %d", path, http.StatusOK, rr.Code)
		}
	}
}

func TestRouterAdminLeadLookup(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"name":"Jane","email":"jane@example.com","source":"send-email"}`
	rr := serve(router, httptest.NewRequest(http.MethodPost, "/contact/email", strings.NewReader(body)))
	var created leads.ContactResponse
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	lookup := func(id string, withToken bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/leads/"+id, nil)
		if withToken {
			req.Header.Set("Authorization", "Bearer "+adminToken(t))
		}
		return serve(router, req)
	}

	if rr := lookup(created.ID, false); rr.Code != http.StatusUnauthorized {
		t.Fatalf("without token: expected %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	rr = lookup(created.ID, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var lead leads.Lead
	if err := json.NewDecoder(rr.Body).Decode(&lead); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lead.ID != created.ID || lead.Email != "jane@example.com" {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if rr := lookup("does-not-exist", true); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouterAdminDisabledWithoutSecret(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) { cfg.AdminAuthSecret = "" })

	req := httptest.NewRequest(http.MethodGet, "/api/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	if rr := serve(router, req); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/contact/email", strings.NewReader(`{"email":"a@b.com","source":"send-email"}`))
	serve(router, req)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "receptionist_contact_submissions_total") {
		t.Fatalf("expected contact metrics in exposition, got:\n%s", rr.Body.String())
	}
}
