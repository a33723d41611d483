// Package render turns a laid-out treemap into something people look at.
//
// # Subpackages
//
//   - [sink]: SVG, JSON, PNG and PDF output of a [treemap.Result]
//   - [palette]: the ordinal category color scale
//   - [legend]: placement of the category legend below the treemap
//   - [nodelink]: the same hierarchy as a Graphviz node-link diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both sinks use them.
//
//	svg := sink.RenderSVG(result, sink.WithTitle("Video Game Sales"))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # Interaction
//
// Interactive front ends report pointer movement to a [Tracker], which turns
// it into [EventHandler] calls: OnHover when the pointer enters a tile and
// OnLeave when it leaves one. The layout itself never sees events.
//
// [sink]: github.com/matzehuels/treemap/pkg/render/sink
// [palette]: github.com/matzehuels/treemap/pkg/render/palette
// [legend]: github.com/matzehuels/treemap/pkg/render/legend
// [nodelink]: github.com/matzehuels/treemap/pkg/render/nodelink
// [treemap.Result]: github.com/matzehuels/treemap/pkg/treemap.Result
package render
