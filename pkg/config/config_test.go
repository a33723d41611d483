package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	w, h := cfg.InnerSize()
	if w != 1340 || h != 540 {
		t.Errorf("InnerSize() = %vx%v, want 1340x540", w, h)
	}
	if cfg.DefaultDataset != "videogames" {
		t.Errorf("DefaultDataset = %q, want videogames", cfg.DefaultDataset)
	}
}

func TestDecode(t *testing.T) {
	input := `
default_dataset = "boxoffice"

[frame]
width = 1000
height = 600

[layout]
tiling = "binary"
ratio = 1.618
round = true

[datasets.boxoffice]
title = "Box Office"
description = "Weekend grosses"
url = "https://example.com/boxoffice.json"

[palette]
colors = ["#1f77b4", "#ff7f0e"]
fade = 0.5

[cache]
backend = "sqlite"
ttl = "2h"
`
	cfg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if cfg.DefaultDataset != "boxoffice" {
		t.Errorf("DefaultDataset = %q", cfg.DefaultDataset)
	}
	if cfg.Frame.Width != 1000 || cfg.Frame.Margin.Top != 100 {
		t.Errorf("Frame = %+v, want width 1000 and default margins", cfg.Frame)
	}
	if cfg.Layout.Tiling != "binary" || cfg.Layout.Ratio != 1.618 || !cfg.Layout.Round {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if got := cfg.Datasets["boxoffice"].Title; got != "Box Office" {
		t.Errorf("dataset title = %q", got)
	}
	if len(cfg.Palette.Colors) != 2 || cfg.Palette.Fade != 0.5 {
		t.Errorf("Palette = %+v", cfg.Palette)
	}
	if cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("Cache.TTL = %v, want 2h", cfg.Cache.TTL)
	}
	if cfg.CacheOptions().Backend != "sqlite" {
		t.Errorf("CacheOptions().Backend = %q", cfg.CacheOptions().Backend)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperrors.Code
	}{
		{"syntax", "[frame\nwidth = 1", apperrors.ErrCodeInvalidConfig},
		{"unknown key", "[frame]\ndepth = 3", apperrors.ErrCodeInvalidConfig},
		{"margins eat frame", "[frame]\nwidth = 50", apperrors.ErrCodeInvalidSize},
		{"unknown tiling", "[layout]\ntiling = \"spiral\"", apperrors.ErrCodeInvalidTiling},
		{"fade out of range", "[palette]\nfade = 2.0", apperrors.ErrCodeInvalidConfig},
		{"bad dataset key", "[datasets.Movies]\nurl = \"https://example.com/m.json\"", apperrors.ErrCodeInvalidDataset},
		{"bad dataset url", "[datasets.movies]\nurl = \"movies.json\"", apperrors.ErrCodeInvalidConfig},
		{"unknown backend", "[cache]\nbackend = \"memcached\"", apperrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Frame.Width != Default().Frame.Width {
		t.Error("Load() of a missing file should return defaults")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFile() of a missing file should fail")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Datasets = map[string]Dataset{"local": {Title: "Local", URL: "http://localhost/data.json"}}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()) error = %v\n%s", err, buf.String())
	}
	if again.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("TTL = %v, want %v", again.Cache.TTL, cfg.Cache.TTL)
	}
	if again.Datasets["local"].URL != "http://localhost/data.json" {
		t.Errorf("dataset lost in round trip: %+v", again.Datasets)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/tmp/xdg", "treemap", "config.toml") {
		t.Errorf("DefaultPath() = %s", path)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "examples", "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile(examples/config.toml) error = %v", err)
	}
	if cfg.Cache.Backend != "sqlite" || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if d, ok := cfg.Datasets["consoles"]; !ok || d.Title != "Console Sales" {
		t.Errorf("datasets = %+v", cfg.Datasets)
	}
	if !cfg.Layout.Round || cfg.Layout.PaddingInner != 1 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
}
