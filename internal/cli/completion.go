package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Scripts are written to
// the CLI's output so they can be redirected or captured in tests.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for treemap.

Load it for the current session:

  bash:        source <(treemap completion bash)
  zsh:         source <(treemap completion zsh)
  fish:        treemap completion fish | source
  powershell:  treemap completion powershell | Out-String | Invoke-Expression

To load completions for every session, write the script to your shell's
completion directory, e.g.:

  treemap completion bash > /etc/bash_completion.d/treemap
  treemap completion zsh > "${fpath[1]}/_treemap"
  treemap completion fish > ~/.config/fish/completions/treemap.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.Out, true)
			case "zsh":
				return root.GenZshCompletion(c.Out)
			case "fish":
				return root.GenFishCompletion(c.Out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.Out)
			}
		},
	}
}
