package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// completionShells lists the shells cobra can generate completions for.
var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// detectShell auto-detects the current shell from $SHELL, defaulting to bash
func detectShell() string {
	shell := strings.ToLower(filepath.Base(os.Getenv("SHELL")))
	switch {
	case strings.Contains(shell, "fish"):
		return "fish"
	case strings.Contains(shell, "zsh"):
		return "zsh"
	case strings.Contains(shell, "pwsh"), strings.Contains(shell, "powershell"):
		return "powershell"
	default:
		return "bash"
	}
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for cdist.

If no shell is specified, it is auto-detected from $SHELL.

To load completions:

Bash:
  $ source <(cdist completion bash)
  # For every session:
  $ cdist completion bash > ~/.local/share/bash-completion/completions/cdist

Zsh:
  $ cdist completion zsh > "${fpath[1]}/_cdist"

Fish:
  $ cdist completion fish > ~/.config/fish/completions/cdist.fish

PowerShell:
  PS> cdist completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}
		if err := writeCompletion(cmd.Root(), shell, cmd.OutOrStdout()); err != nil {
			ExitWithError("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// writeCompletion generates the completion script for shell. Short flag
// shorthands (-x) are hidden while generating so only long options are offered.
func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	saved := stripShortFlagShorthands(root)
	defer restoreShortFlagShorthands(root, saved)

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q (want one of %s)", shell, strings.Join(completionShells, ", "))
	}
}

// walkFlags applies fn to the local, persistent and inherited flags of every
// command in the tree.
func walkFlags(root *cobra.Command, fn func(*pflag.Flag)) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(fn)
		c.PersistentFlags().VisitAll(fn)
		c.InheritedFlags().VisitAll(fn)
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
}

// stripShortFlagShorthands clears the Shorthand of every flag in the tree,
// returning the saved values keyed by flag name.
func stripShortFlagShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	walkFlags(root, func(f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[f.Name] = f.Shorthand
			f.Shorthand = ""
		}
	})
	return saved
}

// restoreShortFlagShorthands restores previously-saved shorthand values.
func restoreShortFlagShorthands(root *cobra.Command, saved map[string]string) {
	walkFlags(root, func(f *pflag.Flag) {
		if old, ok := saved[f.Name]; ok {
			f.Shorthand = old
		}
	})
}
