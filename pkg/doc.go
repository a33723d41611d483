// Package pkg provides the libraries behind treemap: hierarchical data laid
// out as nested rectangles whose areas are proportional to their values.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [hierarchy] and [treemap]
//  2. Rendering: [render] and its subpackages
//  3. Orchestration and infrastructure: [dataset], [pipeline], [cache],
//     [httputil], [server], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Dataset URL or file
//	         ↓
//	    [dataset] package (fetch, decode, optional JSONPath selection)
//	         ↓
//	    [hierarchy] package (tree of named, categorized values)
//	         ↓
//	    [treemap] package (aggregate, order, tile)
//	         ↓
//	    [render/sink] package (SVG/PDF/PNG/JSON output)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/treemap/pkg/hierarchy"
//	    "github.com/matzehuels/treemap/pkg/render/sink"
//	    "github.com/matzehuels/treemap/pkg/treemap"
//	)
//
//	root := hierarchy.Branch("Movies",
//	    hierarchy.Branch("Action",
//	        hierarchy.Leaf("Avatar", "Action", 760505847),
//	        hierarchy.Leaf("The Avengers", "Action", 623279547),
//	    ),
//	    hierarchy.Branch("Drama",
//	        hierarchy.Leaf("Titanic", "Drama", 658672302),
//	    ),
//	)
//
//	res, err := treemap.Layout(root, 960, 570)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(res, sink.WithTitle("Movie Sales"))
//
// # Main Packages
//
// [hierarchy] - The tree model: nodes, rectangles, traversal, aggregation and
// validation. Parses the name/category/value/children JSON documents.
//
// [treemap] - The layout engine. Squarified tiling by default, plus slice,
// dice, slice-dice and binary; padding and rounding.
//
// [render] - Pointer tracking for interactive front ends and SVG conversion
// to PNG and PDF via rsvg-convert.
//
//   - [render/palette]: categorical color scales
//   - [render/legend]: legend placement below the treemap
//   - [render/sink]: output formats (SVG, PDF, PNG, JSON)
//   - [render/nodelink]: the hierarchy as a Graphviz node-link diagram
//
// [dataset] - The dataset registry and loader. Built-in datasets plus those
// declared in the config file; JSONPath selection of subtrees.
//
// [pipeline] - The load → layout → render pipeline used by the CLI and the
// server, with every stage cached by content hash.
//
// [cache] - Byte caches with TTL: file, SQLite, Redis, MongoDB and a null
// backend.
//
// [httputil] - HTTP client with retry, conditional revalidation and stale
// fallback.
//
// [server] - The HTTP front end: an HTML page, SVG and JSON endpoints,
// health and Prometheus metrics.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/treemap/...    # Specific package
//	go test -run Example         # Examples only
//
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/hierarchy
// [treemap]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/treemap
// [render]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render
// [render/palette]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/palette
// [render/legend]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/legend
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/nodelink
// [dataset]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/dataset
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/httputil
// [server]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/observability
package pkg
