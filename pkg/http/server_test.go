package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applogger "FinMerge/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, "fine") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
}

func serve(s *Server, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerRoutesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(applogger.Nop(), []Handler{routes{}}, WithRegistry(reg))

	if rec := serve(s, http.MethodGet, "/ok", nil); rec.Code != http.StatusOK {
		t.Fatalf("/ok status = %d", rec.Code)
	}

	rec := serve(s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{class="2xx",method="GET",route="/ok"} 1`) {
		t.Errorf("request counter missing from:\n%s", rec.Body.String())
	}
}

func TestServerRecoversPanics(t *testing.T) {
	s := NewServer(applogger.Nop(), []Handler{routes{}})

	rec := serve(s, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var env APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Status != http.StatusInternalServerError {
		t.Errorf("envelope = %+v", env)
	}
}

func TestServerCORSPreflight(t *testing.T) {
	s := NewServer(applogger.Nop(), []Handler{routes{}})

	rec := serve(s, http.MethodOptions, "/ok", map[string]string{
		echo.HeaderOrigin:                     "https://dash.example",
		echo.HeaderAccessControlRequestMethod: http.MethodGet,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	h := rec.Header()
	if h.Get(echo.HeaderAccessControlAllowOrigin) != "https://dash.example" {
		t.Errorf("allow origin = %q", h.Get(echo.HeaderAccessControlAllowOrigin))
	}
	if h.Get(echo.HeaderAccessControlMaxAge) != "600" {
		t.Errorf("max age = %q", h.Get(echo.HeaderAccessControlMaxAge))
	}

	rec = serve(s, http.MethodOptions, "/ok", nil)
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "" {
		t.Error("allow origin set without an Origin header")
	}
}
