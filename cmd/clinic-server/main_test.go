package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bonejoint/clinic/internal/config"
	"github.com/bonejoint/clinic/internal/platform/sandbox"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:5000"},
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		RequestTimeout: 5 * time.Second,
		BodyLimit:      "1M",
		ClinicTimezone: "UTC",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	e, _, err := newServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Server wiring
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	e := newTestServer(t, testConfig())
	rec := serve(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != version {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestServer_PatientRoundTrip(t *testing.T) {
	e := newTestServer(t, testConfig())

	rec := serve(e, http.MethodPost, "/api/patients",
		`{"firstName":"Asha","lastName":"Rao","age":41,"gender":"female","phone":"9876543210"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	rec = serve(e, http.MethodGet, "/api/patients?search=asha", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var patients []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &patients); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(patients) != 1 || patients[0]["firstName"] != "Asha" {
		t.Errorf("unexpected search result %v", patients)
	}
}

func TestServer_ValidationError(t *testing.T) {
	e := newTestServer(t, testConfig())
	rec := serve(e, http.MethodPost, "/api/patients", `{"firstName":"Asha"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid patient data") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestServer_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimit = "1K"
	e := newTestServer(t, cfg)

	big := `{"firstName":"` + strings.Repeat("a", 2048) + `"}`
	rec := serve(e, http.MethodPost, "/api/patients", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestServer_BodyLimit_Chunked(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimit = "1K"
	e := newTestServer(t, cfg)

	big := `{"firstName":"` + strings.Repeat("a", 4096) + `","lastName":"Rao","age":41,"gender":"female","phone":"9876543210"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", io.MultiReader(strings.NewReader(big)))
	req.ContentLength = -1
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_TrailingBodyRejected(t *testing.T) {
	e := newTestServer(t, testConfig())

	rec := serve(e, http.MethodPost, "/api/patients",
		`{"firstName":"Asha","lastName":"Rao","age":41,"gender":"female","phone":"9876543210"} trailing`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var patients []map[string]interface{}
	rec = serve(e, http.MethodGet, "/api/patients", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &patients); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("expected no patient stored, got %d", len(patients))
	}
}

func TestServer_TransitionEnforcement(t *testing.T) {
	cfg := testConfig()
	cfg.EnforceVisitTransitions = true
	e := newTestServer(t, cfg)

	serve(e, http.MethodPost, "/api/patients",
		`{"firstName":"Asha","lastName":"Rao","age":41,"gender":"female","phone":"9876543210"}`)
	rec := serve(e, http.MethodPost, "/api/visits", `{"patientId":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodPatch, "/api/visits/1", `{"status":"completed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for waiting -> completed, got %d", rec.Code)
	}
}

func TestServer_SeededData(t *testing.T) {
	e, svc, err := newServer(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	cfg := sandbox.DefaultSeedConfig()
	cfg.PatientCount = 3
	if _, err := sandbox.NewSeeder(svc, cfg, zerolog.Nop()).Generate(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := serve(e, http.MethodGet, "/api/stats/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["totalPatients"] != 3 {
		t.Errorf("expected 3 visits today, got %v", stats)
	}
}

func TestServer_Metrics(t *testing.T) {
	e := newTestServer(t, testConfig())
	serve(e, http.MethodPost, "/api/patients",
		`{"firstName":"Asha","lastName":"Rao","age":41,"gender":"female","phone":"9876543210"}`)

	rec := serve(e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `clinic_records_created_total{resource="patients"} 1`) {
		t.Errorf("expected created patient counter in:\n%s", rec.Body.String())
	}
}

func TestServer_OpenAPI(t *testing.T) {
	e := newTestServer(t, testConfig())
	rec := serve(e, http.MethodGet, "/api/openapi.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range []string{
		"/api/patients/{id}",
		"/api/visits/code/{visitCode}",
		"/api/visits/{visitId}/lab-tests",
		"/api/stats/revenue/today",
	} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
	if _, ok := doc.Paths["/api/patients/{id}"]["delete"]; !ok {
		t.Error("missing DELETE /api/patients/{id}")
	}
}

func TestNewServer_BadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.ClinicTimezone = "Mars/Olympus"
	if _, _, err := newServer(cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown time zone")
	}
}

func TestRunServer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0
	if err := runServer(cfg); err == nil {
		t.Error("expected validation error")
	}
}

// ---------------------------------------------------------------------------
// CLI
// ---------------------------------------------------------------------------

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := serveCmd()
	for _, name := range []string{"port", "seed-demo"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("serve is missing --%s", name)
		}
	}
}
