package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCompletionCmd creates the completion command
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for cgctl.

To load completions:

Bash:
  # Linux:
  $ cgctl completion bash > /etc/bash_completion.d/cgctl

  # Current session:
  $ source <(cgctl completion bash)

Zsh:
  $ cgctl completion zsh > "${fpath[1]}/_cgctl"

  # Current session:
  $ source <(cgctl completion zsh)

Fish:
  $ cgctl completion fish > ~/.config/fish/completions/cgctl.fish

PowerShell:
  PS> cgctl completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletion(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
