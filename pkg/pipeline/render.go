package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/render/nodelink"
	"github.com/matzehuels/treemap/pkg/render/palette"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Render generates output artifacts in the requested formats without
// consulting the cache.
func Render(ctx context.Context, src *Source, layout *treemap.Result, opts Options) (map[string][]byte, error) {
	scale, err := opts.Palette()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "palette")
	}
	if opts.IsNodelink() {
		return renderNodelink(ctx, src.Tree, scale, opts)
	}
	return renderTreemap(ctx, src, layout, scale, opts)
}

func renderTreemap(ctx context.Context, src *Source, layout *treemap.Result, scale *palette.Scale, opts Options) (map[string][]byte, error) {
	sinkOpts := append(opts.SinkOptions(src.Dataset.Title, src.Dataset.Description), sink.WithPalette(scale))
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(layout, sinkOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, layout, opts.Scale, sinkOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, layout, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(layout, sinkOpts...)
		default:
			return nil, ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

type nodelinkJSON struct {
	DOT  string          `json:"dot"`
	Tree *hierarchy.Node `json:"tree"`
}

func renderNodelink(ctx context.Context, tree *hierarchy.Node, scale *palette.Scale, opts Options) (map[string][]byte, error) {
	dot, err := nodelink.ToDOT(tree, nodelink.Options{
		Detailed: opts.Detailed,
		MaxDepth: opts.MaxDepth,
		Palette:  scale,
	})
	if err != nil {
		return nil, treeError(err, "nodelink")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = json.MarshalIndent(nodelinkJSON{DOT: dot, Tree: tree}, "", "  ")
		default:
			return nil, ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render nodelink %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
