package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	applogger "TVRelay/pkg/logger"
)

func TestRecoverReturnsJSON500(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(Recover(applogger.NewWithWriter(&logs, "info")))
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"kaboom"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "panic recovered") {
		t.Fatalf("panic not logged: %s", logs.String())
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware(nil, 0))
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for _, id := range []string{"1", "2", "3"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/items/:id", http.MethodGet, "200")); got != 3 {
		t.Fatalf("requests = %v", got)
	}
}

func TestMetricsCountsHandlerErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware(applogger.Nop(), 0))
	e.GET("/fail", func(echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fail", http.MethodGet, "502")); got != 1 {
		t.Fatalf("requests = %v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://tradingview.example"},
		AllowMethods: []string{http.MethodPost},
		MaxAge:       600,
	}))
	e.POST("/webhook", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/webhook", nil)
	req.Header.Set(echo.HeaderOrigin, "https://tradingview.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "https://tradingview.example" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlMaxAge); got != "600" {
		t.Fatalf("max-age = %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"https://tradingview.example"}}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRequestLoggingWritesLine(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.Use(RequestLogging(applogger.NewWithWriter(&logs, "info")))
	e.GET("/status", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

	out := logs.String()
	if !strings.Contains(out, `"uri":"/status"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("log = %s", out)
	}
}
