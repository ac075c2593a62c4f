package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tf2rp/consolelog-go/internal/settings"
)

var (
	// settings flags
	settingsInit bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the settings in effect",
	Long: `Show the settings file in use and the value of every setting.

With --init, a settings file holding the defaults is written first.
An existing file is never overwritten.`,
	Example: `  # Show the settings
  consolelog settings

  # Create a YAML settings file to edit
  consolelog settings --init --settings ~/tf2/consolelog.yaml`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	settingsCmd.Flags().BoolVar(&settingsInit, "init", false,
		"Write a settings file with the defaults if none exists")
}

func runSettings(cmd *cobra.Command, args []string) error {
	p := settingsPath
	if p == "" {
		p = settings.DefaultPath()
	}
	path, err := settings.ExpandPath(p)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if settingsInit {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("settings file already exists: %s", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := settings.Save(path, settings.Defaults()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	s, err := settings.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n", path)
	for _, key := range settings.Keys {
		v, _ := s.Lookup(key)
		fmt.Fprintf(out, "%s = %v\n", key, v)
	}
	return nil
}
