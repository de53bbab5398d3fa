package cli

import (
	"github.com/spf13/cobra"

	"github.com/isocell/isocell/pkg/config"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a completion script for one of shells.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for bash, zsh, fish or powershell.

Graph arguments complete to .json files, --config to .toml and .yaml files
and --backend to the storage backends. For example:

  $ source <(isocell completion bash)
  $ isocell completion fish > ~/.config/fish/completions/isocell.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeGraphFile completes the single graph document argument.
func completeGraphFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// fileExt completes flag values to files with one of exts.
func fileExt(exts ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// registerRootCompletions wires value completion for the persistent flags.
func registerRootCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("config", fileExt("toml", "yaml", "yml"))
	_ = root.RegisterFlagCompletionFunc("backend", cobra.FixedCompletions(config.Backends, cobra.ShellCompDirectiveNoFileComp))
	_ = root.RegisterFlagCompletionFunc("data", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	})
}

// registerOutputCompletions wires value completion for the partition
// artifact flags.
func registerOutputCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("tree", fileExt("json"))
	_ = cmd.RegisterFlagCompletionFunc("dot", fileExt("dot", "gv"))
	_ = cmd.RegisterFlagCompletionFunc("svg", fileExt("svg"))
}
