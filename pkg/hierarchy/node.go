package hierarchy

import (
	"math"
)

// Separator joins ancestor names into a node's path identifier.
const Separator = "."

// Rect is an axis-aligned rectangle in drawing coordinates. X grows to the
// right and Y grows downward, as in SVG.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns the area of r.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Empty reports whether r has zero area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Contains reports whether the point (x, y) lies in r. The left and top edges
// are inclusive, the right and bottom edges exclusive, so adjacent tiles never
// both contain a point.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Overlaps reports whether the interiors of r and o intersect. Rectangles that
// only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// AspectRatio returns max(w/h, h/w). Empty rectangles report +Inf.
func (r Rect) AspectRatio() float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return math.Inf(1)
	}
	return math.Max(w/h, h/w)
}

// Node is one entry of the hierarchy.
//
// Name, Category, Value and Children come from input. ID, Depth, Height and
// Parent are filled in by [Aggregate]; Rect is filled in by a layout.
type Node struct {
	Name     string  // Display name, unique among siblings
	Category string  // Leaf category used for coloring and the legend
	Value    float64 // Leaf value from input; aggregated sum for internal nodes

	Children []*Node

	ID     string // Path identifier (ancestor names joined by Separator)
	Depth  int    // Distance from the root (root = 0)
	Height int    // Longest path to a descendant leaf (leaf = 0)
	Rect   Rect   // Assigned rectangle, zero until laid out

	// Parent is set by Aggregate and only used to derive identifiers.
	Parent *Node
}

// Leaf returns a leaf node with the given value.
func Leaf(name, category string, value float64) *Node {
	return &Node{Name: name, Category: category, Value: value}
}

// Branch returns an internal node owning children. Its value is unset (NaN)
// until Aggregate sums the children, so a Branch without children fails
// validation like any other leaf without a value.
func Branch(name string, children ...*Node) *Node {
	return &Node{Name: name, Value: math.NaN(), Children: children}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasValue reports whether n carries a value from input. Only meaningful for
// leaves; internal nodes get their value from Aggregate.
func (n *Node) HasValue() bool { return !math.IsNaN(n.Value) }

// Clone returns a deep copy of the subtree rooted at n. Parent pointers in the
// copy refer to copied nodes; the copy's root has a nil Parent.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return cloneNode(n, nil)
}

func cloneNode(n, parent *Node) *Node {
	c := *n
	c.Parent = parent
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = cloneNode(child, &c)
		}
	}
	return &c
}
