package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/octobees/contact-scraper/internal/config"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := log.Logger
	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf)
	t.Cleanup(func() { log.Logger = orig })
	return buf
}

func TestLoggingMiddleware(t *testing.T) {
	buf := captureLogs(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var entry map[string]any
	line, _, _ := strings.Cut(buf.String(), "\n")
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if entry["request_id"] != "rid-123" || entry["path"] != "/healthz" || entry["level"] != "info" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("expected status field 200, got %v", entry["status"])
	}
	if _, ok := entry["latency_ms"]; !ok {
		t.Fatalf("expected latency_ms field")
	}

	// errors are rendered by echo, logged at error level and propagated
	buf.Reset()
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging()(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	if !strings.Contains(buf.String(), `"request_id":"rid-456"`) || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log entry with new request id, got %s", buf.String())
	}
}

func TestScrapeRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	mw := ScrapeRateLimiter(cfg)

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	call := func(method, path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath(path)
		if user != "" {
			c.Set(ContextKeyUserID, user)
		}
		_ = mw(next)(c)
		return rec
	}

	if rec := call(http.MethodPost, "/scrape", "alice"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec := call(http.MethodPost, "/scrape", "alice")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After of 60, got %q", rec.Header().Get("Retry-After"))
	}

	// Buckets are per user.
	if rec := call(http.MethodPost, "/scrape", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("expected another user to have its own bucket, got %d", rec.Code)
	}

	// Non-scrape routes and reads bypass the limiter.
	if rec := call(http.MethodGet, "/healthz", "alice"); rec.Code != http.StatusOK {
		t.Fatalf("expected non-scrape request to pass")
	}
	if rec := call(http.MethodGet, "/scrape", "alice"); rec.Code != http.StatusOK {
		t.Fatalf("expected GET to bypass limiter")
	}

	// zero config should behave as passthrough
	mw = ScrapeRateLimiter(config.RateLimitConfig{})
	for i := 0; i < 3; i++ {
		if rec := call(http.MethodPost, "/scrape", "alice"); rec.Code != http.StatusOK {
			t.Fatalf("expected passthrough when limiter disabled")
		}
	}
	if nextCalls != 7 {
		t.Fatalf("expected 7 handler invocations, got %d", nextCalls)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("admin")

	t.Run("missing role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("incorrect role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "user")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "admin")

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})

	t.Run("any of several roles", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "user")

		called := false
		_ = RequireRole("admin", "user")(func(c echo.Context) error {
			called = true
			return nil
		})(c)
		if !called {
			t.Fatalf("expected user role to be accepted")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			rid := RequestIDFromContext(c)
			if rid == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})

	t.Run("oversized header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = handler(func(c echo.Context) error { return nil })(c)
		if got := rec.Header().Get("X-Request-ID"); len(got) > 128 || got == "" {
			t.Fatalf("expected a generated id, got %q", got)
		}
	})

	t.Run("request logger carries id", func(t *testing.T) {
		buf := captureLogs(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "rid-ctx")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = handler(func(c echo.Context) error {
			zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
			return nil
		})(c)
		if !strings.Contains(buf.String(), `"request_id":"rid-ctx"`) {
			t.Fatalf("expected request scoped logger, got %s", buf.String())
		}
	})
}
