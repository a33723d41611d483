// Package config loads treemap settings from a TOML file.
//
// Every command starts from [Default], overlays the file at [DefaultPath]
// (or --config) and finally applies command-line flags. A missing default
// file is not an error; unknown keys are.
//
//	default_dataset = "movies"
//
//	[frame]
//	width  = 1420
//	height = 700
//
//	[layout]
//	tiling = "squarify"
//	ratio  = 1.618
//
//	[datasets.boxoffice]
//	title = "Box Office"
//	url   = "https://example.com/boxoffice.json"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/treemap/pkg/cache"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Config is the full set of settings.
type Config struct {
	DefaultDataset string             `toml:"default_dataset"`
	Frame          Frame              `toml:"frame"`
	Layout         Layout             `toml:"layout"`
	Datasets       map[string]Dataset `toml:"datasets"`
	Palette        Palette            `toml:"palette"`
	Cache          Cache              `toml:"cache"`
	Server         Server             `toml:"server"`
}

// Frame is the drawing surface. The treemap fills the area inside the
// margins; the title sits in the top margin and the legend below.
type Frame struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Margin Margin  `toml:"margin"`
}

// Margin is the space around the treemap.
type Margin struct {
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
	Left   float64 `toml:"left"`
}

// Layout holds treemap options.
type Layout struct {
	Tiling       string  `toml:"tiling"`
	Ratio        float64 `toml:"ratio"`
	PaddingInner float64 `toml:"padding_inner"`
	PaddingOuter float64 `toml:"padding_outer"`
	PaddingTop   float64 `toml:"padding_top"`
	Round        bool    `toml:"round"`
}

// Dataset adds or overrides a registry entry.
type Dataset struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	URL         string `toml:"url"`
}

// Palette configures category colors. Empty Colors means the built-in
// 20-color scale.
type Palette struct {
	Colors []string `toml:"colors"`
	Fade   float64  `toml:"fade"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	SQLitePath    string   `toml:"sqlite_path"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	TTL           Duration `toml:"ttl"`
	// Prefix namespaces every key, for backends shared between deployments.
	Prefix string `toml:"prefix"`
}

// Server configures `treemap serve`.
type Server struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings: a 1420x700 frame with margins
// 100/20/60/60 (a 1340x540 treemap), squarified tiling with ratio 1 and a
// file cache.
func Default() *Config {
	return &Config{
		DefaultDataset: "videogames",
		Frame: Frame{
			Width:  1420,
			Height: 700,
			Margin: Margin{Top: 100, Right: 20, Bottom: 60, Left: 60},
		},
		Layout: Layout{
			Tiling: treemap.TilingSquarify,
			Ratio:  1,
		},
		Palette: Palette{Fade: 0.2},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.DatasetTTL},
		},
		Server: Server{
			Addr:    "127.0.0.1:8080",
			Metrics: true,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/treemap/config.toml, falling back to
// ~/.config/treemap/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "treemap", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "treemap", "config.toml"), nil
}

// Load reads path over the defaults. If path does not exist the defaults are
// returned unchanged.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads path over the defaults. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	w, h := c.InnerSize()
	if err := apperrors.ValidateSize("frame width inside margins", w); err != nil {
		return err
	}
	if err := apperrors.ValidateSize("frame height inside margins", h); err != nil {
		return err
	}
	if c.Layout.Tiling != "" && !slices.Contains(treemap.TilingNames, strings.ToLower(c.Layout.Tiling)) {
		return apperrors.New(apperrors.ErrCodeInvalidTiling, "unknown tiling %q (must be one of: %s)",
			c.Layout.Tiling, strings.Join(treemap.TilingNames, ", "))
	}
	if c.Layout.Ratio < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout ratio must not be negative")
	}
	if c.Palette.Fade < 0 || c.Palette.Fade > 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "palette fade must be within [0, 1], got %g", c.Palette.Fade)
	}
	for _, key := range c.DatasetKeys() {
		if err := apperrors.ValidateDatasetKey(key); err != nil {
			return err
		}
		if err := apperrors.ValidateURL(c.Datasets[key].URL); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "dataset %s", key)
		}
	}
	if c.Cache.Backend != "" && !slices.Contains(cache.Backends, strings.ToLower(c.Cache.Backend)) {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: %s)",
			c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	return nil
}

// InnerSize returns the treemap area: the frame minus its margins.
func (c *Config) InnerSize() (width, height float64) {
	m := c.Frame.Margin
	return c.Frame.Width - m.Left - m.Right, c.Frame.Height - m.Top - m.Bottom
}

// DatasetKeys returns the configured dataset keys in sorted order.
func (c *Config) DatasetKeys() []string {
	keys := make([]string, 0, len(c.Datasets))
	for k := range c.Datasets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:    c.Cache.Backend,
		Dir:        c.Cache.Dir,
		SQLitePath: c.Cache.SQLitePath,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}
