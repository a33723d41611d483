package treemap

import (
	"fmt"
	"math"

	"github.com/matzehuels/treemap/pkg/hierarchy"
)

// WarningKind classifies non-fatal findings reported with a layout.
type WarningKind string

// DegenerateInput marks a zero-value leaf or subtree. Such nodes are laid out
// as empty rectangles.
const DegenerateInput WarningKind = "degenerate_input"

// Warning is a non-fatal finding produced while laying out a tree.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
}

// Tile is the draw-ready rectangle of one leaf.
type Tile struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Value    float64 `json:"value"`
	Depth    int     `json:"depth"`
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
}

// Rect returns the tile's rectangle.
func (t Tile) Rect() hierarchy.Rect {
	return hierarchy.Rect{X0: t.X0, Y0: t.Y0, X1: t.X1, Y1: t.Y1}
}

// Width returns the tile's horizontal extent.
func (t Tile) Width() float64 { return t.X1 - t.X0 }

// Height returns the tile's vertical extent.
func (t Tile) Height() float64 { return t.Y1 - t.Y0 }

// Result is a laid-out tree.
type Result struct {
	// Root is the laid-out copy of the input tree. Every node carries its
	// rectangle; internal nodes carry the bounding rectangle of their subtree.
	// It is not serialized; a Result decoded from JSON has a nil Root.
	Root *hierarchy.Node `json:"-"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Tiles holds one entry per leaf, in pre-order.
	Tiles []Tile `json:"tiles"`

	// Categories are the distinct leaf categories in first-seen order.
	Categories []string `json:"categories,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// TileAt returns the non-empty tile containing the point (x, y).
func (r *Result) TileAt(x, y float64) (Tile, bool) {
	for _, t := range r.Tiles {
		rect := t.Rect()
		if !rect.Empty() && rect.Contains(x, y) {
			return t, true
		}
	}
	return Tile{}, false
}

// Layout computes a treemap of root inside a width x height rectangle whose
// top-left corner is the origin.
//
// The input tree is not modified: Layout validates it, works on a clone,
// aggregates values, orders siblings (tallest subtree first, then largest
// value, unless [WithOrder] says otherwise) and partitions the rectangle top
// down with the configured [Tiling].
//
// Malformed input (empty tree, missing, negative or non-finite leaf values,
// non-positive or non-finite dimensions) fails with a
// [*hierarchy.ValidationError] and no result. Zero-value leaves and subtrees
// are not errors: they get an empty rectangle at the corner of the space they
// would have occupied and a [DegenerateInput] warning.
//
// With the default options the leaves tile the root rectangle exactly and
// each leaf's area is proportional to its value. Padding and rounding trade
// that proportionality for presentation.
//
// Layout is deterministic: the same tree, size and options give bit-identical
// rectangles.
func Layout(root *hierarchy.Node, width, height float64, opts ...Option) (*Result, error) {
	cfg := newConfig(opts...)

	if err := checkSize("width", width); err != nil {
		return nil, err
	}
	if err := checkSize("height", height); err != nil {
		return nil, err
	}
	if err := hierarchy.Validate(root); err != nil {
		return nil, err
	}
	if cfg.tile == nil {
		cfg.tile = Squarify(cfg.ratio)
	}

	work, err := hierarchy.Aggregate(root.Clone())
	if err != nil {
		return nil, err
	}
	if cfg.order != nil {
		hierarchy.Sort(work, cfg.order)
	}

	l := &layouter{cfg: cfg, padding: []float64{0}}
	work.Rect = hierarchy.Rect{X0: 0, Y0: 0, X1: width, Y1: height}
	hierarchy.EachBefore(work, l.position)
	if cfg.round {
		hierarchy.EachBefore(work, roundNode)
	}

	res := &Result{
		Root:       work,
		Width:      width,
		Height:     height,
		Categories: hierarchy.Categories(work),
		Warnings:   l.warnings,
	}
	for _, n := range hierarchy.Leaves(work) {
		res.Tiles = append(res.Tiles, Tile{
			ID:       n.ID,
			Name:     n.Name,
			Category: n.Category,
			Value:    n.Value,
			Depth:    n.Depth,
			X0:       n.Rect.X0,
			Y0:       n.Rect.Y0,
			X1:       n.Rect.X1,
			Y1:       n.Rect.Y1,
		})
	}
	return res, nil
}

func checkSize(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return hierarchy.Invalid("", "%s is not finite", name)
	}
	if v <= 0 {
		return hierarchy.Invalid("", "%s must be positive, got %g", name, v)
	}
	return nil
}

type layouter struct {
	cfg      config
	padding  []float64 // inner half-padding by depth
	warnings []Warning
}

// position shrinks a node's rectangle by its parent's inner padding, then
// tiles its children into what remains after its own outer padding. It runs
// in pre-order, so a node's rectangle is final before its children are
// visited.
func (l *layouter) position(n *hierarchy.Node) {
	if n.Value == 0 {
		collapse(n)
		if n.Parent == nil || n.Parent.Value != 0 {
			l.warn(n)
		}
		return
	}

	p := l.padAt(n.Depth)
	r := inset(n.Rect, p, p, p, p)
	n.Rect = r

	if n.IsLeaf() {
		return
	}

	half := l.cfg.paddingInner / 2
	l.setPad(n.Depth+1, half)
	top := l.cfg.paddingOuter
	if l.cfg.paddingTop >= 0 {
		top = l.cfg.paddingTop
	}
	outer := l.cfg.paddingOuter
	inner := inset(r, top-half, outer-half, outer-half, outer-half)
	l.cfg.tile(n, inner)
}

func (l *layouter) padAt(depth int) float64 {
	if depth < len(l.padding) {
		return l.padding[depth]
	}
	return 0
}

func (l *layouter) setPad(depth int, v float64) {
	for len(l.padding) <= depth {
		l.padding = append(l.padding, 0)
	}
	l.padding[depth] = v
}

func (l *layouter) warn(n *hierarchy.Node) {
	what := "leaf"
	if !n.IsLeaf() {
		what = "subtree"
	}
	l.warnings = append(l.warnings, Warning{
		Kind:    DegenerateInput,
		Path:    n.ID,
		Message: fmt.Sprintf("zero-value %s laid out as an empty rectangle", what),
	})
}

// collapse gives n and its whole subtree an empty rectangle at n's corner.
func collapse(n *hierarchy.Node) {
	x, y := n.Rect.X0, n.Rect.Y0
	hierarchy.EachBefore(n, func(d *hierarchy.Node) {
		d.Rect = hierarchy.Rect{X0: x, Y0: y, X1: x, Y1: y}
	})
}

// inset shrinks r by the given amounts per side. A side that would cross its
// opposite collapses to the midpoint.
func inset(r hierarchy.Rect, top, right, bottom, left float64) hierarchy.Rect {
	out := hierarchy.Rect{X0: r.X0 + left, Y0: r.Y0 + top, X1: r.X1 - right, Y1: r.Y1 - bottom}
	if out.X1 < out.X0 {
		mid := (out.X0 + out.X1) / 2
		out.X0, out.X1 = mid, mid
	}
	if out.Y1 < out.Y0 {
		mid := (out.Y0 + out.Y1) / 2
		out.Y0, out.Y1 = mid, mid
	}
	return out
}

func roundNode(n *hierarchy.Node) {
	n.Rect = hierarchy.Rect{
		X0: math.Round(n.Rect.X0),
		Y0: math.Round(n.Rect.Y0),
		X1: math.Round(n.Rect.X1),
		Y1: math.Round(n.Rect.Y1),
	}
}
