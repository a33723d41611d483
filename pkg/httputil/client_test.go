package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
)

const movies = `{"name":"Movies","children":[{"name":"Action","children":[{"name":"Avatar","category":"Action","value":"760505847"}]}]}`

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond)}, opts...)
	return NewClient(opts...)
}

func TestClientGetBytes(t *testing.T) {
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		accept = r.Header.Get("Accept")
		w.Write([]byte(movies))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, WithHeader("User-Agent", "treemap-test"))
	resp, err := client.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(resp.Body) != movies {
		t.Errorf("GetBytes() body = %q", resp.Body)
	}
	if resp.Source != SourceNetwork {
		t.Errorf("Source = %q, want %q", resp.Source, SourceNetwork)
	}
	if accept != "application/json" {
		t.Errorf("Accept header = %q, want application/json", accept)
	}
}

func TestClientStatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
		wantCode  apperrors.Code
	}{
		{"not found", http.StatusNotFound, 1, apperrors.ErrCodeNotFound},
		{"bad request", http.StatusBadRequest, 1, apperrors.ErrCodeNetwork},
		{"server error retried", http.StatusBadGateway, 3, apperrors.ErrCodeNetwork},
		{"rate limited retried", http.StatusTooManyRequests, 3, apperrors.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).GetBytes(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("GetBytes() expected error")
			}
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.wantCode, err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClientNotFoundSentinel(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestClient(t, srv).GetBytes(context.Background(), srv.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(err, ErrNotFound) = false for %v", err)
	}
}

func TestClientRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(movies))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(resp.Body) != movies {
		t.Errorf("body = %q", resp.Body)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClientCacheHit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(movies))
	}))
	defer srv.Close()

	cache, _ := NewCache(t.TempDir(), time.Hour)
	client := newTestClient(t, srv, WithCache(cache))

	if _, err := client.GetBytes(context.Background(), srv.URL); err != nil {
		t.Fatalf("first GetBytes() error: %v", err)
	}
	resp, err := client.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second GetBytes() error: %v", err)
	}
	if resp.Source != SourceCache {
		t.Errorf("Source = %q, want %q", resp.Source, SourceCache)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientRevalidation(t *testing.T) {
	var conditional atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(movies))
	}))
	defer srv.Close()

	cache, _ := NewCache(t.TempDir(), 10*time.Millisecond)
	client := newTestClient(t, srv, WithCache(cache))

	if _, err := client.GetBytes(context.Background(), srv.URL); err != nil {
		t.Fatalf("first GetBytes() error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	resp, err := client.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() after expiry error: %v", err)
	}
	if resp.Source != SourceRevalidated {
		t.Errorf("Source = %q, want %q", resp.Source, SourceRevalidated)
	}
	if string(resp.Body) != movies {
		t.Errorf("revalidated body = %q", resp.Body)
	}
	if conditional.Load() != 1 {
		t.Errorf("conditional requests = %d, want 1", conditional.Load())
	}
}

func TestClientServesStaleWhenOriginFails(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(movies))
	}))
	defer srv.Close()

	cache, _ := NewCache(t.TempDir(), 10*time.Millisecond)
	client := newTestClient(t, srv, WithCache(cache), WithRetry(2, time.Millisecond))

	if _, err := client.GetBytes(context.Background(), srv.URL); err != nil {
		t.Fatalf("first GetBytes() error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	down.Store(true)

	resp, err := client.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() with origin down error: %v", err)
	}
	if resp.Source != SourceStale {
		t.Errorf("Source = %q, want %q", resp.Source, SourceStale)
	}
}

func TestClientContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).GetBytes(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetBytes() error = %v, want context.Canceled", err)
	}
}
