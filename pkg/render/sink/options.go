package sink

import (
	"github.com/matzehuels/treemap/pkg/render/legend"
	"github.com/matzehuels/treemap/pkg/render/palette"
)

// Margin is the space around the treemap inside the drawing.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargin leaves room for the title above and the legend below.
var DefaultMargin = Margin{Top: 100, Right: 20, Bottom: 60, Left: 60}

// Option configures a renderer.
type Option func(*renderer)

type renderer struct {
	title       string
	description string
	margin      Margin
	scale       *palette.Scale
	legend      legend.Options
	showLegend  bool
	interactive bool
}

// WithTitle sets the heading drawn above the treemap.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// WithDescription sets the subtitle drawn under the title.
func WithDescription(s string) Option { return func(r *renderer) { r.description = s } }

// WithMargin replaces [DefaultMargin]. A zero Margin draws the tiles
// edge to edge.
func WithMargin(m Margin) Option { return func(r *renderer) { r.margin = m } }

// WithPalette sets the category colors. The scale is primed with the
// result's categories before any tile is drawn.
func WithPalette(s *palette.Scale) Option { return func(r *renderer) { r.scale = s } }

// WithLegend draws the category legend with o.
func WithLegend(o legend.Options) Option {
	return func(r *renderer) { r.legend = o; r.showLegend = true }
}

// WithoutLegend omits the legend. The legend is shown by default.
func WithoutLegend() Option { return func(r *renderer) { r.showLegend = false } }

// WithoutInteraction drops the tooltip script, for static conversion.
func WithoutInteraction() Option { return func(r *renderer) { r.interactive = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		margin:      DefaultMargin,
		legend:      legend.DefaultOptions(),
		showLegend:  true,
		interactive: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale == nil {
		r.scale = palette.Default()
	}
	return r
}
