package treemap

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/treemap/pkg/hierarchy"
)

// Phi is the golden ratio. Passing it to [Squarify] targets golden rectangles
// instead of squares, which is what most d3-based treemaps draw by default.
var Phi = (1 + math.Sqrt(5)) / 2

// Tiling partitions the rectangle r among the children of parent, assigning
// each child's Rect. Children are visited in their current order and must
// have aggregated values; parent.Value is their sum.
type Tiling func(parent *hierarchy.Node, r hierarchy.Rect)

// Tiling names accepted by [ParseTiling].
const (
	TilingSquarify  = "squarify"
	TilingSlice     = "slice"
	TilingDice      = "dice"
	TilingSliceDice = "slice-dice"
	TilingBinary    = "binary"
)

// TilingNames lists the names accepted by [ParseTiling].
var TilingNames = []string{TilingSquarify, TilingSlice, TilingDice, TilingSliceDice, TilingBinary}

// ParseTiling returns the tiling registered under name. The ratio is only used
// by the squarified tiling; values below 1 are treated as 1.
func ParseTiling(name string, ratio float64) (Tiling, error) {
	switch strings.ToLower(name) {
	case "", TilingSquarify:
		return Squarify(ratio), nil
	case TilingSlice:
		return Slice, nil
	case TilingDice:
		return Dice, nil
	case TilingSliceDice:
		return SliceDice, nil
	case TilingBinary:
		return Binary, nil
	default:
		return nil, fmt.Errorf("unknown tiling %q (must be one of: %s)", name, strings.Join(TilingNames, ", "))
	}
}

// Squarify returns the squarified tiling.
//
// Children are packed into rows. A row runs along the shorter side of the
// remaining rectangle; children are added to the current row one at a time,
// in order, for as long as the worst aspect ratio in the row does not get
// worse. Equal worst ratios keep growing the row. When the next child would
// make the row worse, the row is closed, the remaining rectangle shrinks by
// the row's thickness and a new row starts.
//
// ratio is the target aspect ratio; 1 aims for squares, [Phi] for golden
// rectangles.
func Squarify(ratio float64) Tiling {
	if !(ratio >= 1) {
		ratio = 1
	}
	return func(parent *hierarchy.Node, r hierarchy.Rect) {
		squarify(ratio, parent.Children, parent.Value, r)
	}
}

// squarify places nodes row by row inside r. A row spans the rectangle
// horizontally (diced) when the remaining space is taller than wide.
func squarify(ratio float64, nodes []*hierarchy.Node, value float64, r hierarchy.Rect) {
	n := len(nodes)
	i0, i1 := 0, 0
	x0, y0, x1, y1 := r.X0, r.Y0, r.X1, r.Y1

	for i0 < n {
		dx, dy := x1-x0, y1-y0

		// The row opens with the next non-empty node; empty nodes in front of
		// it ride along with zero size.
		var sum float64
		for {
			sum = nodes[i1].Value
			i1++
			if sum != 0 || i1 >= n {
				break
			}
		}
		minValue, maxValue := sum, sum

		if dx > 0 && dy > 0 && value > 0 {
			alpha := math.Max(dy/dx, dx/dy) / (value * ratio)
			beta := sum * sum * alpha
			minRatio := math.Max(maxValue/beta, beta/minValue)

			for ; i1 < n; i1++ {
				v := nodes[i1].Value
				sum += v
				minValue = math.Min(minValue, v)
				maxValue = math.Max(maxValue, v)
				beta = sum * sum * alpha
				newRatio := math.Max(maxValue/beta, beta/minValue)
				if newRatio > minRatio {
					sum -= v
					break
				}
				minRatio = newRatio
			}
		} else {
			// No room to compare shapes: everything left forms one row.
			for ; i1 < n; i1++ {
				sum += nodes[i1].Value
			}
		}

		row := nodes[i0:i1]
		last := i1 >= n
		if dx < dy {
			ry1 := y1
			if value > 0 && !last {
				ry1 = y0 + dy*sum/value
			}
			dice(row, sum, hierarchy.Rect{X0: x0, Y0: y0, X1: x1, Y1: ry1})
			y0 = ry1
		} else {
			rx1 := x1
			if value > 0 && !last {
				rx1 = x0 + dx*sum/value
			}
			slice(row, sum, hierarchy.Rect{X0: x0, Y0: y0, X1: rx1, Y1: y1})
			x0 = rx1
		}
		value -= sum
		i0 = i1
	}
}

// Slice stacks the children vertically, each spanning the full width, with
// heights proportional to value.
func Slice(parent *hierarchy.Node, r hierarchy.Rect) {
	slice(parent.Children, parent.Value, r)
}

// Dice lines the children up horizontally, each spanning the full height,
// with widths proportional to value.
func Dice(parent *hierarchy.Node, r hierarchy.Rect) {
	dice(parent.Children, parent.Value, r)
}

// SliceDice alternates between Dice at even depths and Slice at odd depths.
func SliceDice(parent *hierarchy.Node, r hierarchy.Rect) {
	if parent.Depth%2 == 1 {
		Slice(parent, r)
		return
	}
	Dice(parent, r)
}

// slice is the vertical strip placement used by Slice and by squarified rows.
// The last node ends exactly on the far edge so rows tile without drift.
func slice(nodes []*hierarchy.Node, value float64, r hierarchy.Rect) {
	var k float64
	if value > 0 {
		k = r.Height() / value
	}
	y := r.Y0
	for i, n := range nodes {
		y1 := y + n.Value*k
		if i == len(nodes)-1 && value > 0 {
			y1 = r.Y1
		}
		n.Rect = hierarchy.Rect{X0: r.X0, Y0: y, X1: r.X1, Y1: y1}
		y = y1
	}
}

func dice(nodes []*hierarchy.Node, value float64, r hierarchy.Rect) {
	var k float64
	if value > 0 {
		k = r.Width() / value
	}
	x := r.X0
	for i, n := range nodes {
		x1 := x + n.Value*k
		if i == len(nodes)-1 && value > 0 {
			x1 = r.X1
		}
		n.Rect = hierarchy.Rect{X0: x, Y0: r.Y0, X1: x1, Y1: r.Y1}
		x = x1
	}
}

// Binary recursively splits the children into two groups of roughly equal
// value, cutting along the longer side of the rectangle. It produces a
// balanced layout whose shapes depend on the value distribution.
func Binary(parent *hierarchy.Node, r hierarchy.Rect) {
	nodes := parent.Children
	if len(nodes) == 0 {
		return
	}
	sums := make([]float64, len(nodes)+1)
	for i, n := range nodes {
		sums[i+1] = sums[i] + n.Value
	}
	binaryPartition(nodes, sums, 0, len(nodes), parent.Value, r)
}

func binaryPartition(nodes []*hierarchy.Node, sums []float64, i, j int, value float64, r hierarchy.Rect) {
	if i >= j-1 {
		nodes[i].Rect = r
		return
	}

	offset := sums[i]
	target := value/2 + offset
	// First index k in (i, j-1] whose prefix sum reaches the target.
	k := i + 1 + slices.IndexFunc(sums[i+1:j], func(s float64) bool { return s >= target })
	if k <= i {
		k = j - 1
	}
	if target-sums[k-1] < sums[k]-target && i+1 < k {
		k--
	}

	left := sums[k] - offset
	right := value - left

	if r.Width() > r.Height() {
		xk := r.X1
		if value > 0 {
			xk = (r.X0*right + r.X1*left) / value
		}
		binaryPartition(nodes, sums, i, k, left, hierarchy.Rect{X0: r.X0, Y0: r.Y0, X1: xk, Y1: r.Y1})
		binaryPartition(nodes, sums, k, j, right, hierarchy.Rect{X0: xk, Y0: r.Y0, X1: r.X1, Y1: r.Y1})
		return
	}
	yk := r.Y1
	if value > 0 {
		yk = (r.Y0*right + r.Y1*left) / value
	}
	binaryPartition(nodes, sums, i, k, left, hierarchy.Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: yk})
	binaryPartition(nodes, sums, k, j, right, hierarchy.Rect{X0: r.X0, Y0: yk, X1: r.X1, Y1: r.Y1})
}
