// Package palette assigns colors to leaf categories.
//
// A [Scale] is ordinal: the first category it sees gets the first color,
// the second category the second color and so on, wrapping around when the
// categories outnumber the colors. Feed it categories in the order they first
// appear in the tree and the same data always gets the same colors.
package palette

import (
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Category20 is the classic 20-color categorical palette: ten hues, each
// followed by a lighter variant.
var Category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// DefaultFade is how far the default palette is blended toward white.
const DefaultFade = 0.2

var white = colorful.Color{R: 1, G: 1, B: 1}

// Fade blends hex toward white by t in [0, 1], interpolating in RGB.
func Fade(hex string, t float64) (string, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", fmt.Errorf("parse color %q: %w", hex, err)
	}
	return c.BlendRgb(white, t).Clamped().Hex(), nil
}

// Scale is an ordinal category-to-color mapping. It is safe for concurrent
// use.
type Scale struct {
	mu     sync.Mutex
	colors []string
	index  map[string]int
	order  []string
}

// New returns a scale over colors, each faded toward white by fade. An empty
// colors list selects [Category20].
func New(colors []string, fade float64) (*Scale, error) {
	if len(colors) == 0 {
		colors = Category20
	}
	faded := make([]string, len(colors))
	for i, c := range colors {
		f, err := Fade(c, fade)
		if err != nil {
			return nil, err
		}
		faded[i] = f
	}
	return &Scale{colors: faded, index: make(map[string]int)}, nil
}

// Default returns [Category20] faded by [DefaultFade].
func Default() *Scale {
	s, err := New(Category20, DefaultFade)
	if err != nil {
		panic(err)
	}
	return s
}

// Color returns the color of category, assigning the next palette entry on
// first sight.
func (s *Scale) Color(category string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[category]
	if !ok {
		i = len(s.order)
		s.index[category] = i
		s.order = append(s.order, category)
	}
	return s.colors[i%len(s.colors)]
}

// Domain registers categories in order and returns the scale.
func (s *Scale) Domain(categories ...string) *Scale {
	for _, c := range categories {
		s.Color(c)
	}
	return s
}

// Categories returns the categories seen so far, in assignment order.
func (s *Scale) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Colors returns the faded palette.
func (s *Scale) Colors() []string {
	return append([]string(nil), s.colors...)
}
