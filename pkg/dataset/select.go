package dataset

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
)

// Select evaluates the JSONPath expression against a decoded document and
// returns the hierarchy to draw.
//
// A single object match is returned as is, so
//
//	$.children[?(@.name == 'Wii')]
//
// focuses the treemap on one platform. Several object matches become the
// children of a new root named after the document's root. Non-object matches
// are ignored.
func Select(doc any, selector string) (any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid jsonpath %q", selector)
	}

	var nodes []any
	for _, r := range x.Get(doc) {
		if _, ok := r.(map[string]any); ok {
			nodes = append(nodes, r)
		}
	}

	switch len(nodes) {
	case 0:
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "jsonpath %q matched no objects", selector)
	case 1:
		return nodes[0], nil
	}

	name := selector
	if m, ok := doc.(map[string]any); ok {
		if n, ok := m["name"].(string); ok && n != "" {
			name = n
		}
	}
	return map[string]any{
		"name":     fmt.Sprintf("%s (%d selected)", name, len(nodes)),
		"children": nodes,
	}, nil
}
