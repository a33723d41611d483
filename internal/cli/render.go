package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// sourceFlags are the flags shared by every command that loads a dataset.
type sourceFlags struct {
	dataset string
	input   string
	sel     string
	refresh bool
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dataset, "data", "d", "", "dataset key (see 'treemap datasets')")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "hierarchy JSON file or URL (overrides --data)")
	cmd.Flags().StringVar(&f.sel, "select", "", "JSONPath selecting the subtree to draw")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "fetch the dataset again instead of using the cached copy")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply copies the flags that were set onto opts.
func (f *sourceFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("data") {
		opts.Dataset = f.dataset
	}
	opts.Input = f.input
	opts.Select = f.sel
	opts.Refresh = f.refresh
}

// layoutFlags mirror the [layout] config section.
type layoutFlags struct {
	width, height float64
	tiling        string
	ratio         float64
	paddingInner  float64
	paddingOuter  float64
	paddingTop    float64
	round         bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "treemap width (default: frame width minus margins)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "treemap height (default: frame height minus margins)")
	cmd.Flags().StringVar(&f.tiling, "tiling", "", "tiling: "+strings.Join(treemap.TilingNames, ", "))
	cmd.Flags().Float64Var(&f.ratio, "ratio", 0, "target aspect ratio for squarify (default 1)")
	cmd.Flags().Float64Var(&f.paddingInner, "padding-inner", 0, "gap between siblings")
	cmd.Flags().Float64Var(&f.paddingOuter, "padding-outer", 0, "inset of each parent")
	cmd.Flags().Float64Var(&f.paddingTop, "padding-top", 0, "top inset of each parent (default: padding-outer)")
	cmd.Flags().BoolVar(&f.round, "round", false, "round tile edges to whole pixels")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("width", &opts.Width, f.width)
	set("height", &opts.Height, f.height)
	set("ratio", &opts.Ratio, f.ratio)
	set("padding-inner", &opts.PaddingInner, f.paddingInner)
	set("padding-outer", &opts.PaddingOuter, f.paddingOuter)
	set("padding-top", &opts.PaddingTop, f.paddingTop)
	if cmd.Flags().Changed("tiling") {
		opts.Tiling = f.tiling
	}
	if cmd.Flags().Changed("round") {
		opts.Round = f.round
	}
}

// renderCommand creates the render command: load, lay out and write files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src         sourceFlags
		lay         layoutFlags
		output      string
		formatsStr  string
		vizType     string
		title       string
		description string
		noLegend    bool
		colors      []string
		fade        float64
		scale       float64
		detailed    bool
		maxDepth    int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a dataset to SVG, PNG, PDF or JSON",
		Long: `Render a dataset to SVG, PNG, PDF or JSON.

The dataset is fetched (or read from --input), laid out as a treemap and
written to one file per format. PNG and PDF need rsvg-convert on the PATH.

Use -t nodelink to draw the hierarchy as a node-link diagram instead.

Results are cached locally for faster subsequent runs.`,
		Example: `  treemap render -d movies -f svg,png
  treemap render -i sales.json --select "$.children[?(@.name == 'Wii')]" -o wii.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.FromConfig(c.cfg)
			src.apply(cmd, &opts)
			lay.apply(cmd, &opts)

			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.VizType = vizType
			opts.Title = title
			opts.Description = description
			opts.NoLegend = noLegend
			opts.Detailed = detailed
			opts.MaxDepth = maxDepth
			opts.Scale = scale
			if cmd.Flags().Changed("colors") {
				opts.Colors = colors
			}
			if cmd.Flags().Changed("fade") {
				opts.Fade = &fade
			}
			return c.runRender(cmd.Context(), opts, output, src.noCache)
		},
	}

	src.register(cmd)
	lay.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&vizType, "type", "t", pipeline.VizTypeTreemap, "visualization type: treemap, nodelink")
	cmd.Flags().StringVar(&title, "title", "", "heading (default: dataset title)")
	cmd.Flags().StringVar(&description, "description", "", "subheading (default: dataset description)")
	cmd.Flags().BoolVar(&noLegend, "no-legend", false, "omit the category legend")
	cmd.Flags().StringSliceVar(&colors, "colors", nil, "category colors as hex (default: 20-color palette)")
	cmd.Flags().Float64Var(&fade, "fade", 0, "blend category colors toward white, 0..1 (default 0.2)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show values and leaf counts (nodelink)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit nodelink depth (0 = unlimited)")

	return cmd
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if (opts.HasFormat(pipeline.FormatPNG) || opts.HasFormat(pipeline.FormatPDF)) && !render.Available() {
		return apperrors.New(apperrors.ErrCodeUnsupported,
			"png and pdf output need rsvg-convert (brew install librsvg, apt install librsvg2-bin)")
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	d, _, err := runner.Resolve(opts)
	if err != nil {
		return err
	}
	name := d.Key
	if name == "" {
		name = opts.Input
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", name))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(output, name), output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleValue.Render(d.Title))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, w := range result.Layout.Warnings {
		printWarning("%s: %s", w.Path, w.Message)
	}
	if d.Key != "" && !opts.IsNodelink() {
		printNewline()
		printNextStep("Explore it in the terminal", "treemap view -d "+d.Key)
	}
	return nil
}

// writeArtifacts writes one file per format. With a single format and an
// explicit output the file is written exactly there; otherwise files are
// named base.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	formats = append([]string(nil), formats...)
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
