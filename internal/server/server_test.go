package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/repository"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
	"github.com/cloud-ru/mcp-realty-go/internal/tools"
)

func testHandler(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	cfg := &config.Config{
		MaxPrincipal:   1e11,
		MaxRate:        100,
		MaxYears:       50,
		MaxHorizon:     100,
		DefaultHorizon: 40,
	}
	tables := ratetable.NewCache(time.Minute, t.TempDir())
	svc := service.NewPlanService(cfg, tables, repository.NewMemoryCache(time.Minute), repository.NewMemoryRunRepository())
	return NewHandler(tools.NewRegistry(cfg, otel.Tracer("test"), tables, svc), rps, burst)
}

func TestHealth(t *testing.T) {
	h := testHandler(t, 0, 0)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestListTools(t *testing.T) {
	h := testHandler(t, 0, 0)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []tools.Tool
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Error("expected registered tools")
	}
}

func TestCallTool(t *testing.T) {
	h := testHandler(t, 0, 0)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "loan schedule",
			path:       "/tools/loan_schedule",
			body:       `{"principal": 30000000, "annual_rate": 1.5, "years": 35}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "validation error",
			path:       "/tools/loan_schedule",
			body:       `{"principal": 0, "annual_rate": 1.5, "years": 35}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			path:       "/tools/loan_schedule",
			body:       `{"principal":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown tool",
			path:       "/tools/deposit_growth",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty body uses defaults",
			path:       "/tools/plan_history",
			body:       ``,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := testHandler(t, 0, 0)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/loan_schedule", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := testHandler(t, 0.001, 1)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testHandler(t, 0, 0)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]float64{"total": math.NaN()})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestAnnualTaxesWithMalformedCorrections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.csv")
	if err := os.WriteFile(path, []byte("1,NaN\n2,-0.5\n3,Inf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"land_assessed_value":     20000000,
		"building_assessed_value": 5000000,
		"years":                   3,
		"correction_rates_csv":    path,
	})

	h := testHandler(t, 0, 0)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tools/annual_taxes", bytes.NewReader(payload)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Years []struct {
			Total float64 `json:"total"`
		} `json:"years"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Years) != 3 {
		t.Fatalf("len(years) = %d, want 3", len(resp.Years))
	}
	for i, y := range resp.Years {
		if y.Total <= 0 || y.Total != resp.Years[0].Total {
			t.Errorf("year %d total %v, want positive neutral-year total", i+1, y.Total)
		}
	}
}
