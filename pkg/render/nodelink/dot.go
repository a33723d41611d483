package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/render/palette"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the aggregated value and, for leaves, the category to
	// node labels. When false, only the name is shown.
	Detailed bool

	// MaxDepth hides nodes deeper than this. Zero shows the whole tree.
	MaxDepth int

	// Palette colors leaves by category.
	Palette *palette.Scale
}

// ToDOT converts a hierarchy to Graphviz DOT. The tree is validated and
// aggregated on a copy; root is not modified.
func ToDOT(root *hierarchy.Node, opts Options) (string, error) {
	work, err := hierarchy.Aggregate(root.Clone())
	if err != nil {
		return "", err
	}
	if opts.Palette != nil {
		opts.Palette.Domain(hierarchy.Categories(work)...)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	visible := func(n *hierarchy.Node) bool { return opts.MaxDepth <= 0 || n.Depth <= opts.MaxDepth }

	hierarchy.EachBefore(work, func(n *hierarchy.Node) {
		if !visible(n) {
			return
		}
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	})

	buf.WriteString("\n")
	hierarchy.EachBefore(work, func(n *hierarchy.Node) {
		if n.Parent == nil || !visible(n) {
			return
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", n.Parent.ID, n.ID)
	})

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(n *hierarchy.Node, opts Options) string {
	if !opts.Detailed {
		return n.Name
	}
	parts := []string{n.Name, "value: " + strconv.FormatFloat(n.Value, 'f', -1, 64)}
	if n.IsLeaf() && n.Category != "" {
		parts = append(parts, "category: "+n.Category)
	}
	if folded := !n.IsLeaf() && opts.MaxDepth > 0 && n.Depth == opts.MaxDepth; folded {
		parts = append(parts, fmt.Sprintf("%d leaves", len(hierarchy.Leaves(n))))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *hierarchy.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
	switch {
	case n.Value == 0:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case n.IsLeaf() && opts.Palette != nil:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", opts.Palette.Color(n.Category)))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the diagram scales like the treemap SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given
// scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
