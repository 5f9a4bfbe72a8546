package acquirer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const target = "https://acme.com/contact"

func testConfig(primary, fallback string) Config {
	return Config{
		PrimaryProxy:  primary,
		FallbackProxy: fallback,
		Attempts:      2,
		Timeout:       2 * time.Second,
		Backoff:       time.Millisecond,
	}
}

func TestFetchPrimarySendsHeadersAndTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.RequestURI != "/"+target {
			t.Errorf("unexpected request uri %q", r.RequestURI)
		}
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			t.Errorf("missing X-Requested-With header")
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html>hello</html>")
	}))
	defer srv.Close()

	body, err := New(testConfig(srv.URL+"/", "")).Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>hello</html>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchRetriesPrimaryBeforeSucceeding(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<p>second</p>")
	}))
	defer srv.Close()

	body, err := New(testConfig(srv.URL+"/", "")).Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<p>second</p>" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected success on second attempt, body=%q calls=%d", body, calls)
	}
}

func TestFetchFallsBackAfterPrimaryExhausted(t *testing.T) {
	var primaryCalls int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryCalls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != target {
			t.Errorf("unexpected wrapped url %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"contents":"<html>wrapped</html>","status":{"http_code":200}}`)
	}))
	defer fallback.Close()

	body, err := New(testConfig(primary.URL+"/", fallback.URL+"/get?url=")).Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>wrapped</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	if atomic.LoadInt32(&primaryCalls) != 2 {
		t.Fatalf("expected 2 primary attempts, got %d", primaryCalls)
	}
}

// signingClient stamps an Authorization header like an ID token transport.
type signingClient struct {
	calls int32
}

func (c *signingClient) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	req.Header.Set("Authorization", "Bearer signed")
	return http.DefaultClient.Do(req)
}

type plainClient struct {
	calls int32
}

func (c *plainClient) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return http.DefaultClient.Do(req)
}

func TestFetchKeepsPrimaryCredentialsOffFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer signed" {
			t.Errorf("primary request missing credentials")
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("fallback received Authorization %q", got)
		}
		fmt.Fprint(w, `{"contents":"<p>ok</p>"}`)
	}))
	defer fallback.Close()

	signer := &signingClient{}
	plain := &plainClient{}
	a := New(testConfig(primary.URL+"/", fallback.URL+"/?url="), WithPrimaryClient(signer), WithFallbackClient(plain))

	body, err := a.Fetch(context.Background(), target)
	if err != nil || body != "<p>ok</p>" {
		t.Fatalf("expected fallback body, got %q err=%v", body, err)
	}
	if got := atomic.LoadInt32(&signer.calls); got != 2 {
		t.Fatalf("expected 2 signed primary calls, got %d", got)
	}
	if got := atomic.LoadInt32(&plain.calls); got != 1 {
		t.Fatalf("expected 1 fallback call, got %d", got)
	}
}

func TestWithPrimaryClientLeavesFallbackDefault(t *testing.T) {
	a := New(DefaultConfig(), WithPrimaryClient(&signingClient{}))
	if a.fallback != http.DefaultClient {
		t.Fatalf("fallback client was replaced: %T", a.fallback)
	}
}

func TestFetchTreatsJSONPrimaryBodyAsUnusable(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error":"blocked"}`)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"contents":"<p>ok</p>"}`)
	}))
	defer fallback.Close()

	body, err := New(testConfig(primary.URL+"/", fallback.URL+"/?url=")).Fetch(context.Background(), target)
	if err != nil || body != "<p>ok</p>" {
		t.Fatalf("expected fallback body, got %q err=%v", body, err)
	}
}

func TestFetchConnectionRefusedIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := srv.URL
	srv.Close()

	_, err := New(testConfig(closedURL+"/", closedURL+"/get?url=")).Fetch(context.Background(), target)
	if err == nil {
		t.Fatalf("expected error")
	}
	var acqErr *Error
	if !errors.As(err, &acqErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if acqErr.Kind != KindUnknown {
		t.Fatalf("expected unknown kind, got %s", acqErr.Kind)
	}
	if err.Error() != "Failed to scrape the website. Please verify the URL and try again." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFetchAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL+"/", "")
	cfg.Attempts = 1
	cfg.Timeout = 50 * time.Millisecond

	_, err := New(cfg).Fetch(context.Background(), target)
	if KindOf(err) != KindTimeout {
		t.Fatalf("expected timeout, got %v (%s)", err, KindOf(err))
	}
}

func TestFetchHonoursCallerCancellation(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL+"/", srv.URL+"/?url=")
	cfg.Backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(cfg).Fetch(ctx, target)
	if err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("backoff was not interrupted")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Kind
	}{
		"dns not found":     {err: &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}, want: KindNotFound},
		"forbidden":         {err: &StatusError{Code: http.StatusForbidden}, want: KindAccessDenied},
		"too many requests": {err: &StatusError{Code: http.StatusTooManyRequests}, want: KindRateLimited},
		"server error":      {err: &StatusError{Code: http.StatusServiceUnavailable}, want: KindServerDown},
		"not found status":  {err: &StatusError{Code: http.StatusNotFound}, want: KindUnknown},
		"deadline":          {err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: KindTimeout},
		"plain":             {err: errors.New("boom"), want: KindUnknown},
		"already classified": {
			err:  &Error{Kind: KindRateLimited, Err: errors.New("x")},
			want: KindRateLimited,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Kind != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Kind)
			}
			if got.Error() != Message(tc.want) {
				t.Fatalf("unexpected message %q", got.Error())
			}
		})
	}

	if Classify(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(Config{})
	if a.cfg.Attempts != DefaultAttempts || a.cfg.Timeout != DefaultTimeout || a.cfg.UserAgent != DefaultUserAgent {
		t.Fatalf("defaults not applied: %#v", a.cfg)
	}
	if a.cfg.PrimaryProxy != "" || a.cfg.FallbackProxy != "" {
		t.Fatalf("proxy endpoints must be taken as given: %#v", a.cfg)
	}
}
