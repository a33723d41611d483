package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/treemap/pkg/dataset"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/httputil"
	"github.com/matzehuels/treemap/pkg/observability/prom"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

const movies = `{
  "name": "Movies",
  "children": [
    {"name": "Action", "children": [
      {"name": "Avatar", "category": "Action", "value": "760505847"},
      {"name": "The Avengers", "category": "Action", "value": "623279547"}
    ]},
    {"name": "Drama", "children": [
      {"name": "Titanic", "category": "Drama", "value": "658672302"}
    ]}
  ]
}`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(movies))
	}))
	t.Cleanup(origin.Close)

	reg, err := dataset.NewRegistry("movies",
		dataset.Dataset{Key: "movies", Title: "Movie Sales", URL: origin.URL + "/movies.json"},
		dataset.Dataset{Key: "broken", Title: "Broken", URL: origin.URL + "/broken.json"},
	)
	if err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Registry = reg
	runner.Loader = dataset.NewLoader(httputil.NewClient(
		httputil.WithHTTPClient(origin.Client()),
		httputil.WithRetry(1, time.Millisecond),
	))

	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(runner, opts...)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request ID %q is not a UUID", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDReused(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("invalid request ID should be replaced")
	}
}

func TestDatasets(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets")
	var body datasetsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Default != "movies" {
		t.Errorf("default = %q, want movies", body.Default)
	}
	if len(body.Datasets) != 2 || body.Datasets[0].Key != "broken" {
		t.Errorf("datasets = %+v", body.Datasets)
	}
}

func TestTreemapSVG(t *testing.T) {
	rec := get(t, newTestServer(t), "/treemap.svg?width=400&height=200")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`<svg`, `width="480"`, `data-name="Avatar"`, `Movie Sales`} {
		if !strings.Contains(body, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestLayoutJSON(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/layout?width=300&height=100&tiling=slice")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Treemap struct {
			Width float64 `json:"width"`
			Tiles []struct {
				Name  string  `json:"name"`
				Color string  `json:"color"`
				X0    float64 `json:"x0"`
				X1    float64 `json:"x1"`
			} `json:"tiles"`
		} `json:"treemap"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Treemap.Width != 300 {
		t.Errorf("width = %g, want 300", body.Treemap.Width)
	}
	if len(body.Treemap.Tiles) != 3 {
		t.Fatalf("tiles = %d, want 3", len(body.Treemap.Tiles))
	}
	for _, tile := range body.Treemap.Tiles {
		if tile.X0 != 0 || tile.X1 != 300 {
			t.Errorf("slice tiling should span the width: %+v", tile)
		}
		if !strings.HasPrefix(tile.Color, "#") {
			t.Errorf("tile %s color = %q", tile.Name, tile.Color)
		}
	}
}

func TestPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/?data=movies")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{`<title>Movie Sales</title>`, `<svg`, `href="?data=broken"`, `class="selected">Movie Sales</a>`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		target string
		status int
		code   apperrors.Code
	}{
		{"/treemap.svg?width=wide", http.StatusBadRequest, apperrors.ErrCodeInvalidSize},
		{"/treemap.svg?width=-5", http.StatusBadRequest, apperrors.ErrCodeInvalidSize},
		{"/treemap.svg?tiling=spiral", http.StatusBadRequest, apperrors.ErrCodeInvalidTiling},
		{"/api/layout?data=Bad%20Key", http.StatusBadRequest, apperrors.ErrCodeInvalidDataset},
		{"/api/layout?data=music", http.StatusNotFound, apperrors.ErrCodeDatasetNotFound},
		{"/?data=broken", http.StatusBadGateway, apperrors.ErrCodeNetwork},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %v, want %v (%s)", body.Code, tt.code, body.Error)
			}
			if body.RequestID == "" {
				t.Error("error response should carry the request ID")
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestServer(t, WithMetrics(prom.New(reg), reg))

	get(t, s, "/healthz")
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `treemap_http_requests_total{method="GET",route="/healthz",status="200"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestMetricsDisabled(t *testing.T) {
	if rec := get(t, newTestServer(t), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
