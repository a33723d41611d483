package treemap

import "github.com/matzehuels/treemap/pkg/hierarchy"

// Option configures [Layout].
type Option func(*config)

type config struct {
	tile         Tiling
	ratio        float64
	order        func(a, b *hierarchy.Node) int
	paddingInner float64
	paddingOuter float64
	paddingTop   float64 // negative means "same as paddingOuter"
	round        bool
}

func newConfig(opts ...Option) config {
	c := config{
		ratio:      1,
		order:      hierarchy.ByHeightThenValue,
		paddingTop: -1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithTiling sets the tiling method. The default is [Squarify] with the
// configured ratio.
func WithTiling(t Tiling) Option { return func(c *config) { c.tile = t } }

// WithRatio sets the target aspect ratio of the default squarified tiling.
// It has no effect when a tiling is set with WithTiling.
func WithRatio(r float64) Option { return func(c *config) { c.ratio = r } }

// WithOrder sets the sibling order applied before tiling. Pass nil to keep
// the input order.
func WithOrder(cmp func(a, b *hierarchy.Node) int) Option {
	return func(c *config) { c.order = cmp }
}

// WithPaddingInner sets the gap between adjacent siblings.
func WithPaddingInner(p float64) Option { return func(c *config) { c.paddingInner = max(p, 0) } }

// WithPaddingOuter sets the gap between an internal node's edge and its
// children.
func WithPaddingOuter(p float64) Option { return func(c *config) { c.paddingOuter = max(p, 0) } }

// WithPaddingTop sets the top gap of internal nodes, typically to leave room
// for a group label. It overrides the outer padding on that side.
func WithPaddingTop(p float64) Option { return func(c *config) { c.paddingTop = max(p, 0) } }

// WithRound snaps all rectangle corners to whole units.
func WithRound(round bool) Option { return func(c *config) { c.round = round } }
