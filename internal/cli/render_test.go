package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

const salesJSON = `{
  "name": "Sales",
  "children": [
    {"name": "Wii", "children": [
      {"name": "Wii Sports", "category": "Wii", "value": "82.53"},
      {"name": "Mario Kart Wii", "category": "Wii", "value": "35.52"}
    ]},
    {"name": "NES", "children": [
      {"name": "Super Mario Bros.", "category": "NES", "value": "40.24"}
    ]}
  ]
}`

// testConfig starts a dataset origin and writes a config file registering
// it as the default dataset "sales". extra is appended verbatim.
func testConfig(t *testing.T, extra string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(salesJSON))
	}))
	t.Cleanup(srv.Close)

	cfg := fmt.Sprintf(`default_dataset = "sales"

[datasets.sales]
title = "Console Sales"
description = "Best sellers by platform"
url = "%s/sales.json"
%s`, srv.URL, extra)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command and returns what it wrote to c.Out and to
// the status output.
func execute(t *testing.T, args ...string) (out, status string, err error) {
	t.Helper()
	var outBuf, statusBuf bytes.Buffer
	prev := stdout
	stdout = &statusBuf
	t.Cleanup(func() { stdout = prev })

	c := New(io.Discard, LogInfo)
	c.Out = &outBuf
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err = root.ExecuteContext(context.Background())
	return outBuf.String(), statusBuf.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , Json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, fallback, want string
	}{
		{"", "videogames", "videogames"},
		{"", "data/sales.json", "sales"},
		{"out/map.svg", "videogames", "out/map"},
		{"out/map.PNG", "videogames", "out/map.PNG"},
		{"out/map", "videogames", "out/map"},
		{"out/map.v2", "videogames", "out/map.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.fallback); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, filepath.Join(dir, "map"), "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "map.json"), filepath.Join(dir, "map.svg")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	exact := filepath.Join(dir, "exact.image")
	paths, err = writeArtifacts(artifacts, []string{"svg"}, "ignored", exact)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if len(paths) != 1 || paths[0] != exact {
		t.Errorf("single format paths = %v, want [%s]", paths, exact)
	}
}

func TestRenderCommand(t *testing.T) {
	cfg := testConfig(t, "")
	output := filepath.Join(t.TempDir(), "sales.svg")

	_, status, err := execute(t, "render", "--config", cfg, "--no-cache", "-o", output)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, want := range []string{"<svg", `class="tile"`, "Console Sales", "Best sellers by platform"} {
		if !strings.Contains(string(svg), want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if !strings.Contains(status, "Rendered") || !strings.Contains(status, output) {
		t.Errorf("status output = %q", status)
	}
}

func TestRenderCommandFormats(t *testing.T) {
	cfg := testConfig(t, "")
	base := filepath.Join(t.TempDir(), "sales")

	_, _, err := execute(t, "render", "--config", cfg, "--no-cache",
		"-f", "svg,json", "-o", base, "--title", "Override", "--tiling", "binary")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(data), `"tiles"`) || !strings.Contains(string(data), "Override") {
		t.Errorf("json output = %s", data)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("svg not written: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	cfg := testConfig(t, "")
	out := filepath.Join(t.TempDir(), "x")

	tests := []struct {
		name string
		args []string
		want apperrors.Code
	}{
		{"unknown format", []string{"-f", "gif"}, apperrors.ErrCodeInvalidFormat},
		{"unknown tiling", []string{"--tiling", "spiral"}, apperrors.ErrCodeInvalidTiling},
		{"unknown dataset", []string{"-d", "music"}, apperrors.ErrCodeDatasetNotFound},
		{"bad type", []string{"-t", "sunburst"}, apperrors.ErrCodeInvalidFormat},
		{"negative width", []string{"--width", "-10"}, apperrors.ErrCodeInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--config", cfg, "--no-cache", "-o", out}, tt.args...)
			_, _, err := execute(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.want {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "layout", "--config", cfg, "--no-cache",
		"--width", "300", "--height", "200", "--tiling", "slice")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}

	var res treemap.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode layout: %v\n%s", err, out)
	}
	if res.Width != 300 || res.Height != 200 {
		t.Errorf("size = %gx%g, want 300x200", res.Width, res.Height)
	}
	if len(res.Tiles) != 3 {
		t.Fatalf("tiles = %d, want 3", len(res.Tiles))
	}
	for _, tile := range res.Tiles {
		if tile.X0 != 0 || tile.X1 != 300 {
			t.Errorf("slice tile %s spans x %g..%g, want 0..300", tile.Name, tile.X0, tile.X1)
		}
	}
}

func TestLayoutCommandSelect(t *testing.T) {
	cfg := testConfig(t, "")
	output := filepath.Join(t.TempDir(), "wii.json")

	_, _, err := execute(t, "layout", "--config", cfg, "--no-cache",
		"--select", "$.children[?(@.name == 'Wii')]", "-o", output)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var res treemap.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Tiles) != 2 {
		t.Errorf("tiles = %d, want 2 Wii titles", len(res.Tiles))
	}
}
