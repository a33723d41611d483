package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// rawNode mirrors the JSON input shape.
type rawNode struct {
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Value    *number   `json:"value,omitempty"`
	Children []rawNode `json:"children,omitempty"`
}

// number accepts JSON numbers and numeric strings. The published sales and
// pledge datasets encode values as strings ("82.53").
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("value %q is not numeric", s)
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// Parse decodes a JSON hierarchy from r. It does not validate or aggregate
// the result; a leaf without a "value" field gets a NaN Value that
// [Validate] reports.
//
// Parse does not close r.
func Parse(r io.Reader) (*Node, error) {
	var raw rawNode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode hierarchy: %w", err)
	}
	return fromRaw(raw), nil
}

// ParseBytes is Parse for an in-memory document.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// FromValue converts an already decoded JSON value (as produced by
// encoding/json or a JSONPath query) into a hierarchy.
func FromValue(v any) (*Node, error) {
	if _, ok := v.(map[string]any); !ok {
		return nil, Invalid("", "expected an object, got %T", v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode hierarchy: %w", err)
	}
	return ParseBytes(data)
}

func fromRaw(r rawNode) *Node {
	n := &Node{Name: r.Name, Category: r.Category, Value: math.NaN()}
	if r.Value != nil {
		n.Value = float64(*r.Value)
	}
	if len(r.Children) > 0 {
		n.Children = make([]*Node, len(r.Children))
		for i, c := range r.Children {
			n.Children[i] = fromRaw(c)
		}
	}
	return n
}

// MarshalJSON encodes n in the input shape, so a parsed tree round-trips.
// Aggregated values of internal nodes are included.
func (n *Node) MarshalJSON() ([]byte, error) {
	type out struct {
		Name     string   `json:"name"`
		Category string   `json:"category,omitempty"`
		Value    *float64 `json:"value,omitempty"`
		Children []*Node  `json:"children,omitempty"`
	}
	o := out{Name: n.Name, Category: n.Category, Children: n.Children}
	if n.HasValue() {
		v := n.Value
		o.Value = &v
	}
	return json.Marshal(o)
}
