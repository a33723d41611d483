// Package sink writes a laid-out treemap in output formats.
//
// [RenderSVG] draws the figure: title and description above the treemap,
// one group per leaf with a colored tile and its name broken into lines, a
// hover tooltip and the category legend below. [RenderJSON] writes the same
// geometry for other front ends. [RenderPNG] and [RenderPDF] convert the SVG
// with rsvg-convert.
//
// Every renderer takes the same [Option] values:
//
//	svg := sink.RenderSVG(result,
//	    sink.WithTitle("Video Game Sales"),
//	    sink.WithDescription("Top 100 Most Sold Video Games Grouped by Platform"),
//	)
package sink
