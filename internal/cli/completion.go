package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/contactsheet/pkg/errors"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for contactsheet.

  bash:        source <(contactsheet completion bash)
  zsh:         contactsheet completion zsh > "${fpath[1]}/_contactsheet"
  fish:        contactsheet completion fish | source
  powershell:  contactsheet completion powershell | Out-String | Invoke-Expression

Start a new shell for the change to take effect.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return errors.New(errors.ErrCodeInvalidInput, "unsupported shell %q", args[0])
		},
	}
}
