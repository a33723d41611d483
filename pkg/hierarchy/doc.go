// Package hierarchy provides the weighted tree that treemap layouts operate on.
//
// # Overview
//
// A hierarchy is a single-owner tree of [Node] values. Leaves carry a numeric
// value and a category; internal nodes derive their value from their
// descendants. The package covers the steps that happen before geometry:
//
//   - Parsing nested JSON of the shape {name, children?, value?, category?}
//   - Validation of the tree (names, values, structure)
//   - Aggregation of values bottom-up, plus depth, height and path IDs
//   - Ordering siblings so that layouts are reproducible
//
// # Basic Usage
//
//	root, err := hierarchy.ParseBytes(data)
//	if err != nil {
//	    return err
//	}
//	if _, err := hierarchy.Aggregate(root); err != nil {
//	    return err // *ValidationError, no partial aggregation
//	}
//	hierarchy.Sort(root, hierarchy.ByHeightThenValue)
//
// # Identifiers
//
// Names only need to be unique among siblings. [Aggregate] derives a path
// identifier for every node by joining ancestor names with [Separator]:
// the root keeps its own name, a child of "root" named "Wii" becomes
// "root.Wii". Names may contain the separator, but [Validate] rejects a tree
// in which two nodes end up with the same identifier.
//
// # Missing Values
//
// A leaf whose input carried no value has Value set to NaN. [Validate]
// reports such leaves, together with negative or infinite values and sums
// that overflow to infinity, as a [ValidationError]. Values on internal nodes are ignored and overwritten by
// the aggregated sum.
//
// # Concurrency
//
// Nodes are not safe for concurrent mutation. After aggregation and layout a
// tree is treated as immutable and may be read from multiple goroutines.
package hierarchy
