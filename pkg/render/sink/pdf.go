package sink

import (
	"context"

	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// RenderPDF renders the treemap as PDF via SVG conversion. The tooltip
// script is left out.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, res *treemap.Result, opts ...Option) ([]byte, error) {
	svg := RenderSVG(res, append(opts, WithoutInteraction())...)
	return render.ToPDF(ctx, svg)
}
