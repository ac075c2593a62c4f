package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove blank lines and error spam from console.log",
	Long: `Rewrite console.log without blank lines and the errors the game spams
into it. Chat lines are always kept.

The file is rewritten if at least one line would be removed.

Examples:
  consolelog clean
  consolelog clean --path ./console.log -u Steve`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	in, err := newInterpreter(newLogger(os.Stderr))
	if err != nil {
		return err
	}

	report, err := in.Clean(true, usernames...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !report.Committed {
		fmt.Fprintln(out, "Nothing to remove from console.log.")
		return nil
	}
	fmt.Fprintf(out, "Removed %s from console.log.\n", report)
	return nil
}
