package sink

import (
	"encoding/json"

	"github.com/matzehuels/treemap/pkg/render/legend"
	"github.com/matzehuels/treemap/pkg/treemap"
)

type jsonOutput struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Margin      Margin            `json:"margin"`
	Treemap     jsonTreemap       `json:"treemap"`
	Legend      []jsonLegendItem  `json:"legend,omitempty"`
	Warnings    []treemap.Warning `json:"warnings,omitempty"`
}

type jsonTreemap struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Tiles  []jsonTile `json:"tiles"`
}

type jsonTile struct {
	treemap.Tile
	Color string `json:"color"`
}

type jsonLegendItem struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// RenderJSON writes the figure as JSON: frame size and margins, every tile
// with its color, legend placement and layout warnings. Tile coordinates are
// relative to the treemap origin, legend coordinates to the legend origin.
func RenderJSON(res *treemap.Result, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	r.scale.Domain(res.Categories...)
	width, height := r.frameSize(res)

	out := jsonOutput{
		Title:       r.title,
		Description: r.description,
		Width:       width,
		Height:      height,
		Margin:      r.margin,
		Treemap: jsonTreemap{
			Width:  res.Width,
			Height: res.Height,
			Tiles:  make([]jsonTile, len(res.Tiles)),
		},
		Warnings: res.Warnings,
	}
	for i, t := range res.Tiles {
		out.Treemap.Tiles[i] = jsonTile{Tile: t, Color: r.scale.Color(t.Category)}
	}
	if r.showLegend {
		for _, item := range legend.Place(res.Categories, r.legend) {
			out.Legend = append(out.Legend, jsonLegendItem{
				Category: item.Category,
				Color:    r.scale.Color(item.Category),
				X:        item.X,
				Y:        item.Y,
			})
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
