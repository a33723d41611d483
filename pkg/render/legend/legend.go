// Package legend places the category legend drawn under a treemap.
//
// Items flow left to right in rows. A row holds floor(Width/HSpacing) items;
// each item is a Size x Size swatch with its label to the right.
package legend

import "math"

// Options controls legend geometry.
type Options struct {
	Width    float64 // Horizontal space available for the legend
	HSpacing float64 // Distance between item origins in a row
	VSpacing float64 // Gap between rows
	Size     float64 // Swatch edge length
	Offset   float64 // Gap between the treemap and the first row
}

// DefaultOptions returns a 500 wide legend with three 150 spaced items per
// row, 15 pixel swatches and 10 pixel gaps.
func DefaultOptions() Options {
	return Options{Width: 500, HSpacing: 150, VSpacing: 10, Size: 15, Offset: 10}
}

// Label offsets relative to an item's origin.
const (
	TextXOffset = 3
	TextYOffset = -2
)

// Item is one placed legend entry. X and Y are the swatch's top-left corner
// relative to the legend origin.
type Item struct {
	Category string
	X, Y     float64
}

// TextX returns the label's x position relative to the item.
func (o Options) TextX() float64 { return o.Size + TextXOffset }

// TextY returns the label's baseline relative to the item.
func (o Options) TextY() float64 { return o.Size + TextYOffset }

// PerRow returns how many items fit in one row. It is at least 1.
func (o Options) PerRow() int {
	if o.HSpacing <= 0 {
		return 1
	}
	return max(1, int(math.Floor(o.Width/o.HSpacing)))
}

// Place lays out one item per category, in order.
func Place(categories []string, o Options) []Item {
	per := o.PerRow()
	items := make([]Item, len(categories))
	for i, c := range categories {
		col, row := i%per, i/per
		items[i] = Item{
			Category: c,
			X:        float64(col) * o.HSpacing,
			Y:        float64(row)*o.Size + float64(row)*o.VSpacing,
		}
	}
	return items
}

// Height returns the vertical space n items need, including the offset
// above the first row.
func Height(n int, o Options) float64 {
	if n == 0 {
		return 0
	}
	rows := (n + o.PerRow() - 1) / o.PerRow()
	return o.Offset + float64(rows)*o.Size + float64(rows-1)*o.VSpacing
}
