package sink

import (
	"context"

	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// DefaultScale is the PNG resolution multiplier.
const DefaultScale = 2.0

// RenderPNG renders the treemap as PNG via SVG conversion at the given
// scale (0 means [DefaultScale]). The tooltip script is left out.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, res *treemap.Result, scale float64, opts ...Option) ([]byte, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	svg := RenderSVG(res, append(opts, WithoutInteraction())...)
	return render.ToPNG(ctx, svg, scale)
}
