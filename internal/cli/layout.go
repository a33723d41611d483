package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
)

// layoutCommand creates the layout command. It stops after the layout stage
// and writes the raw tile geometry, which is what other tools usually want
// to consume.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src    sourceFlags
		lay    layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a treemap layout and print it as JSON",
		Long: `Compute a treemap layout and print it as JSON.

The output lists every leaf tile with its rectangle, depth, category and
value, plus any warnings about degenerate input. It is written to stdout
unless -o is given.

Unlike 'render -f json' no legend, title or colors are included.`,
		Example: `  treemap layout -d kickstarter --tiling binary
  treemap layout -i sales.json --width 800 --height 600 --round -o layout.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.FromConfig(c.cfg)
			src.apply(cmd, &opts)
			lay.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), opts, output, src.noCache)
		},
	}

	src.register(cmd)
	lay.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	watch := startStopwatch(c.Logger)

	src, loadHit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded", "location", src.Location, "cached", loadHit)

	layout, layoutHit, err := runner.ComputeLayoutWithCacheInfo(ctx, src, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	label := src.Dataset.Key
	if label == "" {
		label = src.Location
	}
	watch.done(fmt.Sprintf("Laid out %s: %d tiles", label, len(layout.Tiles)), "cached", layoutHit)
	printFile(output)
	for _, w := range layout.Warnings {
		printWarning("%s", w)
	}
	return nil
}
