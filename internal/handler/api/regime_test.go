package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"RegimePulse/internal/domain/models"
	"RegimePulse/internal/regime"
	"RegimePulse/internal/usecase"
	applogger "RegimePulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	engine := usecase.NewEngine(nil, regime.NewAnalyzer(nil), nil, nil, nil, applogger.Nop())
	h := NewRegimeHandler(applogger.Nop(), engine, nil, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func TestRegimeEndpointNoSources(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/regime", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	var body struct {
		Data models.Verdict `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Label != models.LabelUnavailable {
		t.Fatalf("label %q, want %q", body.Data.Label, models.LabelUnavailable)
	}
}

func TestHistoryEndpointRejectsOutOfRangeDays(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history?days=500", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestSeriesEndpointWithoutStore(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/mvrv_ratio", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Status != "ok" {
		t.Fatalf("status %q, want ok", body.Data.Status)
	}
}
