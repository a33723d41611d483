// Package treemap lays out a weighted hierarchy as nested rectangles.
//
// # Overview
//
// A treemap partitions a drawing area so that every leaf of a
// [hierarchy.Node] tree receives a rectangle whose area is proportional to
// its value. Siblings tile their parent's rectangle exactly, without gaps or
// overlap, all the way up to the root.
//
// # Usage
//
//	root, _ := hierarchy.ParseBytes(data)
//	res, err := treemap.Layout(root, 1340, 540)
//	if err != nil {
//	    return err // *hierarchy.ValidationError
//	}
//	for _, t := range res.Tiles {
//	    fmt.Println(t.ID, t.X0, t.Y0, t.X1, t.Y1)
//	}
//
// # Tilings
//
// The default tiling is [Squarify]: siblings are packed greedily into rows
// that keep the worst aspect ratio (max(w/h, h/w)) as low as possible. The
// greedy choice is made per row; the result is a local optimum, not the
// globally most square arrangement. [Slice], [Dice], [SliceDice] and
// [Binary] are available through [WithTiling] or [ParseTiling].
//
// # Ordering
//
// Before tiling, siblings are sorted tallest subtree first and then by
// descending value ([hierarchy.ByHeightThenValue]). The order feeds the
// greedy row building, so it is part of what makes output reproducible.
//
// # Degenerate Input
//
// Zero-value leaves are legal. They, and subtrees whose values sum to zero,
// receive an empty rectangle and a [DegenerateInput] warning in
// [Result.Warnings]. No division by zero reaches the output: there are no
// NaN or infinite coordinates.
//
// # Concurrency
//
// Layout is a pure function of its arguments. It never mutates the input tree
// and may be called from multiple goroutines at once.
package treemap
