package hierarchy

import (
	"cmp"
	"slices"
)

// Aggregate validates the tree and fills in the derived fields of every node:
// Value of internal nodes (sum of the children's values, post-order), Depth,
// Height, ID and Parent. The tree is modified in place and root is returned
// for chaining.
//
// If validation fails, Aggregate returns a [*ValidationError] and leaves the
// tree untouched.
func Aggregate(root *Node) (*Node, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}

	root.Parent = nil
	EachBefore(root, func(n *Node) {
		if n.Parent == nil {
			n.ID = n.Name
			n.Depth = 0
		} else {
			n.ID = n.Parent.ID + Separator + n.Name
			n.Depth = n.Parent.Depth + 1
		}
		for _, c := range n.Children {
			c.Parent = n
		}
	})

	EachAfter(root, func(n *Node) {
		if n.IsLeaf() {
			n.Height = 0
			return
		}
		var sum float64
		height := 0
		for _, c := range n.Children {
			sum += c.Value
			height = max(height, c.Height+1)
		}
		n.Value = sum
		n.Height = height
	})
	return root, nil
}

// Sort reorders the children of every internal node using cmp. The sort is
// stable so siblings that compare equal keep their input order.
func Sort(root *Node, cmp func(a, b *Node) int) {
	if root == nil {
		return
	}
	EachBefore(root, func(n *Node) {
		if len(n.Children) > 1 {
			slices.SortStableFunc(n.Children, cmp)
		}
	})
}

// ByHeightThenValue orders taller subtrees first and, among equal heights,
// larger values first. It needs aggregated Height and Value.
func ByHeightThenValue(a, b *Node) int {
	if c := cmp.Compare(b.Height, a.Height); c != 0 {
		return c
	}
	return cmp.Compare(b.Value, a.Value)
}

// ByValue orders larger values first.
func ByValue(a, b *Node) int {
	return cmp.Compare(b.Value, a.Value)
}
