package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for consolelog.

To load completions:

Bash:
  $ source <(consolelog completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ consolelog completion bash > /etc/bash_completion.d/consolelog
  # macOS:
  $ consolelog completion bash > $(brew --prefix)/etc/bash_completion.d/consolelog

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ consolelog completion zsh > "${fpath[1]}/_consolelog"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ consolelog completion fish | source

  # To load completions for each session, execute once:
  $ consolelog completion fish > ~/.config/fish/completions/consolelog.fish

PowerShell:
  PS> consolelog completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> consolelog completion powershell > consolelog.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Usage()
		}

		root := cmd.Root()
		out := cmd.OutOrStdout()

		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// formatNames returns the valid --format values, sorted.
func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for name := range ValidFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// completeFormats completes the --format flag.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	current := strings.ToLower(strings.TrimSpace(toComplete))
	var candidates []string
	for _, name := range formatNames() {
		if strings.HasPrefix(name, current) {
			candidates = append(candidates, name)
		}
	}
	return candidates, cobra.ShellCompDirectiveNoFileComp
}

// completeSettingsFile limits --settings completion to the supported file types.
func completeSettingsFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerFormatCompletion registers completion for a command's --format flag.
func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}
