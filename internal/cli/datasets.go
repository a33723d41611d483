package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/dataset"
)

// datasetsCommand lists the registry: built-in datasets plus those added
// in the config file.
func (c *CLI) datasetsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ls"},
		Short:   "List the available datasets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := dataset.FromConfig(c.cfg)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Default  string            `json:"default"`
					Datasets []dataset.Dataset `json:"datasets"`
				}{reg.Default().Key, reg.All()})
			}
			fmt.Fprintln(c.Out, datasetsTable(reg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// datasetsTable renders the registry with the default entry highlighted.
func datasetsTable(reg *dataset.Registry) string {
	all := reg.All()
	def := reg.Default().Key

	rows := make([][]string, len(all))
	for i, d := range all {
		key := d.Key
		if key == def {
			key += " *"
		}
		rows[i] = []string{key, d.Title, d.URL}
	}
	return renderTable([]string{"KEY", "TITLE", "URL"}, rows, func(row int) bool {
		return all[row].Key == def
	})
}
