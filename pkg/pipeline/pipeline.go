// Package pipeline provides the load → layout → render pipeline behind every
// entry point (CLI commands and the HTTP server).
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: resolve a dataset key, URL or file, fetch it and decode the
//     hierarchy, optionally narrowed with a JSONPath selector
//  2. Layout: compute the treemap for the requested size and tiling
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage is cached by content hash through a [cache.Cache], so a server
// answering the same request twice only renders once.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dataset: "movies",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	src, err := runner.Load(ctx, opts)
//	layout, err := runner.ComputeLayout(ctx, src, opts)
//	artifacts, err := runner.Render(ctx, src, layout, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/config"
	"github.com/matzehuels/treemap/pkg/dataset"
	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/render/legend"
	"github.com/matzehuels/treemap/pkg/render/palette"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth and DefaultHeight are the treemap area of the default
	// 1420x700 frame once its margins are taken off.
	DefaultWidth  = 1340.0
	DefaultHeight = 540.0

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = sink.DefaultScale
)

// Visualization types.
const (
	VizTypeTreemap  = "treemap"
	VizTypeNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTreemap:  true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It supports JSON
// serialization for API requests.
type Options struct {
	// Load options
	Dataset string `json:"dataset,omitempty"` // registry key; empty means the default
	Input   string `json:"input,omitempty"`   // file path or URL, overrides Dataset
	Select  string `json:"select,omitempty"`  // JSONPath narrowing the document
	Refresh bool   `json:"refresh,omitempty"` // bypass cached documents

	// Layout options
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Tiling       string  `json:"tiling,omitempty"`
	Ratio        float64 `json:"ratio,omitempty"`
	PaddingInner float64 `json:"padding_inner,omitempty"`
	PaddingOuter float64 `json:"padding_outer,omitempty"`
	PaddingTop   float64 `json:"padding_top,omitempty"` // 0 follows PaddingOuter
	Round        bool    `json:"round,omitempty"`

	// Render options
	VizType     string       `json:"viz_type,omitempty"`
	Formats     []string     `json:"formats,omitempty"`
	Title       string       `json:"title,omitempty"` // defaults to the dataset title
	Description string       `json:"description,omitempty"`
	Margin      *sink.Margin `json:"margin,omitempty"` // nil selects sink.DefaultMargin
	NoLegend    bool         `json:"no_legend,omitempty"`
	Colors      []string     `json:"colors,omitempty"`
	Fade        *float64     `json:"fade,omitempty"`     // nil selects palette.DefaultFade
	Scale       float64      `json:"scale,omitempty"`    // PNG only
	Detailed    bool         `json:"detailed,omitempty"` // nodelink labels
	MaxDepth    int          `json:"max_depth,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig returns options seeded from cfg: frame, layout and palette
// settings and the default dataset. Flags are applied on top by the caller.
func FromConfig(cfg *config.Config) Options {
	w, h := cfg.InnerSize()
	m := cfg.Frame.Margin
	fade := cfg.Palette.Fade
	return Options{
		Dataset:      cfg.DefaultDataset,
		Width:        w,
		Height:       h,
		Tiling:       cfg.Layout.Tiling,
		Ratio:        cfg.Layout.Ratio,
		PaddingInner: cfg.Layout.PaddingInner,
		PaddingOuter: cfg.Layout.PaddingOuter,
		PaddingTop:   cfg.Layout.PaddingTop,
		Round:        cfg.Layout.Round,
		Margin:       &sink.Margin{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left},
		Colors:       cfg.Palette.Colors,
		Fade:         &fade,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Source is the loaded document.
	Source *Source

	// Layout is the computed treemap. A layout served from cache has a nil
	// Root; its tiles are complete.
	Layout *treemap.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Source is a loaded hierarchy and where it came from.
type Source struct {
	// Dataset is the registry entry, or a synthetic entry keyed by the
	// input location when Options.Input was used.
	Dataset dataset.Dataset

	// Location is the URL or path the document was read from.
	Location string

	Tree *hierarchy.Node

	// Hash is the content hash of Tree, the key for later stages.
	Hash string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LeafCount  int
	TileCount  int
	Warnings   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid viz_type: %q (must be one of: treemap, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the dataset key or input location.
func (o *Options) ValidateForLoad() error {
	o.setLogger()
	if o.Input != "" {
		if dataset.IsURL(o.Input) {
			return apperrors.ValidateURL(o.Input)
		}
		return apperrors.ValidatePath(o.Input)
	}
	if o.Dataset != "" {
		return apperrors.ValidateDatasetKey(o.Dataset)
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Tiling == "" {
		o.Tiling = treemap.TilingSquarify
	}
	o.Tiling = strings.ToLower(o.Tiling)
	if o.Ratio == 0 {
		o.Ratio = 1
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := apperrors.ValidateSize("width", o.Width); err != nil {
		return err
	}
	if err := apperrors.ValidateSize("height", o.Height); err != nil {
		return err
	}
	if _, err := treemap.ParseTiling(o.Tiling, o.Ratio); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidTiling, err, "layout")
	}
	if o.Ratio < 0 || o.PaddingInner < 0 || o.PaddingOuter < 0 || o.PaddingTop < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "ratio and padding must not be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = VizTypeTreemap
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Margin == nil {
		m := sink.DefaultMargin
		o.Margin = &m
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Fade == nil {
		fade := palette.DefaultFade
		o.Fade = &fade
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if f := *o.Fade; f < 0 || f > 1 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "fade must be within [0, 1], got %g", f)
	}
	return nil
}

// Palette builds the category color scale. An unset Fade selects
// palette.DefaultFade; an explicit 0 keeps the colors unblended.
func (o *Options) Palette() (*palette.Scale, error) {
	fade := palette.DefaultFade
	if o.Fade != nil {
		fade = *o.Fade
	}
	return palette.New(o.Colors, fade)
}

// margin returns the frame margin, or sink.DefaultMargin when unset.
func (o *Options) margin() sink.Margin {
	if o.Margin == nil {
		return sink.DefaultMargin
	}
	return *o.Margin
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// TreemapOptions converts the layout options for [treemap.Layout].
func (o *Options) TreemapOptions() ([]treemap.Option, error) {
	tiling, err := treemap.ParseTiling(o.Tiling, o.Ratio)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTiling, err, "layout")
	}
	opts := []treemap.Option{
		treemap.WithTiling(tiling),
		treemap.WithRatio(o.Ratio),
		treemap.WithPaddingInner(o.PaddingInner),
		treemap.WithPaddingOuter(o.PaddingOuter),
		treemap.WithRound(o.Round),
	}
	if o.PaddingTop > 0 {
		opts = append(opts, treemap.WithPaddingTop(o.PaddingTop))
	}
	return opts, nil
}

// SinkOptions converts the render options for the sink renderers, using
// title and description as fallbacks for unset fields.
func (o *Options) SinkOptions(title, description string) []sink.Option {
	if o.Title != "" {
		title = o.Title
	}
	if o.Description != "" {
		description = o.Description
	}
	opts := []sink.Option{
		sink.WithTitle(title),
		sink.WithDescription(description),
		sink.WithMargin(o.margin()),
	}
	if o.NoLegend {
		opts = append(opts, sink.WithoutLegend())
	} else {
		opts = append(opts, sink.WithLegend(legend.DefaultOptions()))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:        o.Width,
		Height:       o.Height,
		Tiling:       o.Tiling,
		Ratio:        o.Ratio,
		PaddingInner: o.PaddingInner,
		PaddingOuter: o.PaddingOuter,
		PaddingTop:   o.PaddingTop,
		Round:        o.Round,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Presentation settings are folded into a hash.
func (o *Options) ArtifactKeyOpts(format, title, description string) cache.ArtifactKeyOpts {
	fade := palette.DefaultFade
	if o.Fade != nil {
		fade = *o.Fade
	}
	style, _ := json.Marshal(struct {
		Title, Description string
		Margin             sink.Margin
		NoLegend           bool
		Colors             []string
		Fade, Scale        float64
		Detailed           bool
		MaxDepth           int
	}{title, description, o.margin(), o.NoLegend, o.Colors, fade, o.Scale, o.Detailed, o.MaxDepth})
	return cache.ArtifactKeyOpts{
		Format:  format,
		VizType: o.VizType,
		Style:   cache.Hash(style),
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
