// Package nodelink draws a hierarchy as a node-link tree diagram.
//
// It is the companion view to the treemap: the same nodes, shown as boxes
// joined parent to child instead of nested rectangles. Layout is left to
// Graphviz.
//
//	dot, err := nodelink.ToDOT(root, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Leaves are filled with their category color when [Options.Palette] is set.
// Wide trees are easier to read with [Options.MaxDepth], which folds
// everything below that depth into its ancestor.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
