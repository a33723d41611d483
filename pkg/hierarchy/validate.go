package hierarchy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is the sentinel wrapped by every [ValidationError]. Use
// errors.Is(err, hierarchy.ErrInvalid) to detect malformed input.
var ErrInvalid = errors.New("invalid hierarchy")

// ValidationError reports malformed input found before any aggregation or
// layout work was done.
type ValidationError struct {
	Path   string // Path of the offending node, empty for tree-wide problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrInvalid, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalid, e.Path, e.Reason)
}

// Unwrap returns ErrInvalid.
func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Invalid builds a ValidationError for the node at path.
func Invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the tree rooted at root without modifying it.
//
// It reports:
//   - an empty tree (nil root)
//   - nodes with an empty name
//   - duplicate names among siblings
//   - identifiers shared by two nodes, as when a child named "a.b" sits
//     next to a subtree "a" with a child "b"
//   - leaves without a value (NaN), with a negative value, or with an
//     infinite value
//   - internal nodes whose aggregated value overflows to infinity
//
// The first problem found in pre-order is returned.
func Validate(root *Node) error {
	if root == nil {
		return Invalid("", "empty tree")
	}
	v := validator{ids: make(map[string]struct{})}
	_, err := v.node(root, root.Name)
	return err
}

// validator walks the tree once, collecting identifiers and summing values
// the way Aggregate will.
type validator struct {
	ids map[string]struct{}
}

func (v *validator) node(n *Node, path string) (float64, error) {
	if n.Name == "" {
		return 0, Invalid(path, "node name is empty")
	}
	if _, dup := v.ids[path]; dup {
		return 0, Invalid(path, "identifier is used by another node")
	}
	v.ids[path] = struct{}{}

	if n.IsLeaf() {
		switch {
		case math.IsNaN(n.Value):
			return 0, Invalid(path, "node has no children and no value")
		case math.IsInf(n.Value, 0):
			return 0, Invalid(path, "value is not finite")
		case n.Value < 0:
			return 0, Invalid(path, "value %g is negative", n.Value)
		}
		return n.Value, nil
	}

	seen := make(map[string]struct{}, len(n.Children))
	var sum float64
	for i, c := range n.Children {
		if c == nil {
			return 0, Invalid(path, "child %d is nil", i)
		}
		childPath := path + Separator + c.Name
		if _, dup := seen[c.Name]; dup && c.Name != "" {
			return 0, Invalid(childPath, "duplicate sibling name")
		}
		seen[c.Name] = struct{}{}
		value, err := v.node(c, childPath)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	if math.IsInf(sum, 0) {
		return 0, Invalid(path, "aggregated value overflows")
	}
	return sum, nil
}
