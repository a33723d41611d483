package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/dataset"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the server share it so caching behaves the same everywhere.
//
// The Runner is stateless except for its collaborators; it does not keep
// pipeline results. Multiple goroutines can use the same Runner with
// different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Loader   *dataset.Loader
	Registry *dataset.Registry

	// DatasetTTL overrides cache.DatasetTTL for fetched documents when set.
	DatasetTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The loader uses a default HTTP client and the registry holds the built-in
// datasets; both fields can be replaced before use.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Loader:   dataset.NewLoader(nil),
		Registry: dataset.Builtin(),
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	src, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Source = src
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = hierarchy.Count(src.Tree)
	result.Stats.LeafCount = len(hierarchy.Leaves(src.Tree))
	result.CacheInfo.LoadHit = loadHit

	logger.Info("loaded dataset",
		"dataset", src.Dataset.Key,
		"nodes", result.Stats.NodeCount,
		"leaves", result.Stats.LeafCount,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.TileCount = len(layout.Tiles)
	result.Stats.Warnings = len(layout.Warnings)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"tiling", opts.Tiling,
		"tiles", len(layout.Tiles),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, src, layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Resolve maps the load options to a dataset and the location to read. An
// explicit input gets an unregistered dataset with an empty key.
func (r *Runner) Resolve(opts Options) (dataset.Dataset, string, error) {
	if opts.Input != "" {
		title := opts.Title
		if title == "" {
			title = path.Base(opts.Input)
		}
		return dataset.Dataset{Title: title, Description: opts.Description, URL: opts.Input}, opts.Input, nil
	}
	d, err := r.Registry.Lookup(opts.Dataset)
	if err != nil {
		return dataset.Dataset{}, "", err
	}
	return d, d.URL, nil
}

// LoadWithCacheInfo loads the hierarchy and returns cache hit info. Remote
// documents are cached for [Runner.DatasetTTL]; local files are always read.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (src *Source, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	d, location, err := r.Resolve(opts)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	label := d.Key
	if label == "" {
		label = "input"
	}
	hooks.OnLoadStart(ctx, label)
	start := time.Now()
	defer func() {
		leaves := 0
		if src != nil {
			leaves = len(hierarchy.Leaves(src.Tree))
		}
		hooks.OnLoadComplete(ctx, label, leaves, time.Since(start), err)
	}()

	data, hit, err := r.fetch(ctx, location, opts)
	if err != nil {
		return nil, false, err
	}

	tree, err := dataset.Decode(data, opts.Select)
	if err != nil {
		return nil, false, treeError(err, location)
	}
	if err := hierarchy.Validate(tree); err != nil {
		return nil, false, treeError(err, location)
	}

	encoded, err := json.Marshal(tree)
	if err != nil {
		return nil, false, fmt.Errorf("hash tree: %w", err)
	}
	return &Source{Dataset: d, Location: location, Tree: tree, Hash: cache.Hash(encoded)}, hit, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*Source, error) {
	src, _, err := r.LoadWithCacheInfo(ctx, opts)
	return src, err
}

func (r *Runner) fetch(ctx context.Context, location string, opts Options) ([]byte, bool, error) {
	if !dataset.IsURL(location) {
		data, err := r.Loader.Fetch(ctx, location)
		return data, false, err
	}

	key := r.Keyer.DatasetKey(location)
	if !opts.Refresh {
		data, ok, err := cache.GetBytes(ctx, r.Cache, "dataset", key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "err", err)
		} else if ok {
			return data, true, nil
		}
	}

	data, err := r.Loader.Fetch(ctx, location)
	if err != nil {
		return nil, false, err
	}
	ttl := r.DatasetTTL
	if ttl <= 0 {
		ttl = cache.DatasetTTL
	}
	if err := cache.SetBytes(ctx, r.Cache, "dataset", key, data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}

// treeError classifies a decode or validation failure as INVALID_TREE.
func treeError(err error, location string) error {
	var ve *hierarchy.ValidationError
	if errors.As(err, &ve) || apperrors.GetCode(err) == "" {
		return apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "%s", location)
	}
	return err
}

// ComputeLayoutWithCacheInfo lays out the source's tree and returns cache hit info.
// Degenerate-input warnings are logged at warn level.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, src *Source, opts Options) (res *treemap.Result, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.LayoutKey(src.Hash, opts.LayoutKeyOpts())
	var cached treemap.Result
	switch err := cache.GetJSON(ctx, r.Cache, "layout", key, &cached); {
	case err == nil:
		return &cached, true, nil
	case !errors.Is(err, cache.ErrNotFound):
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
	}

	tmOpts, err := opts.TreemapOptions()
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Tiling, hierarchy.Count(src.Tree))
	start := time.Now()
	defer func() {
		warnings := 0
		if res != nil {
			warnings = len(res.Warnings)
		}
		hooks.OnLayoutComplete(ctx, opts.Tiling, warnings, time.Since(start), err)
	}()

	res, err = treemap.Layout(src.Tree, opts.Width, opts.Height, tmOpts...)
	if err != nil {
		return nil, false, treeError(err, src.Location)
	}
	for _, w := range res.Warnings {
		opts.Logger.Warn("degenerate input", "path", w.Path, "reason", w.Message)
	}

	if err := cache.SetJSON(ctx, r.Cache, "layout", key, res, cache.LayoutTTL); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return res, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, src *Source, opts Options) (*treemap.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, src, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Cached artifacts are only used when every requested format is cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, src *Source, layout *treemap.Result, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	title, description := src.Dataset.Title, src.Dataset.Description
	lh, err := layoutHash(layout)
	if err != nil {
		return nil, false, err
	}
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(lh, opts.ArtifactKeyOpts(format, title, description))
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok, err := cache.GetBytes(ctx, r.Cache, "artifact", keyFor(format))
		if err != nil || !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts, err = Render(ctx, src, layout, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range artifacts {
		if err := cache.SetBytes(ctx, r.Cache, "artifact", keyFor(format), data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, src *Source, layout *treemap.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, src, layout, opts)
	return artifacts, err
}

func layoutHash(layout *treemap.Result) (string, error) {
	data, err := json.Marshal(layout)
	if err != nil {
		return "", fmt.Errorf("serialize layout for cache key: %w", err)
	}
	return cache.Hash(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
