package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <file>...",
	Short: "Enable installed mods",
	Long: `Move disabled mods back into the profile directory.

Mods are named by their file, as shown by 'modman list'.

Examples:
  modman enable BetterHUD.pak`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <file>...",
	Short: "Disable installed mods",
	Long: `Move mods into the profile's .disabled directory so the game ignores them.

Examples:
  modman disable BetterHUD.pak`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func runToggle(cmd *cobra.Command, names []string, enabled bool) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}

	var failed int
	for _, name := range names {
		rec, err := svc.Manager().SetEnabled(name, enabled)
		if rec == nil {
			if len(names) == 1 {
				return err
			}
			failf(cmd, "%s: %v", name, err)
			failed++
			continue
		}
		if err := saveWarning(cmd, err); err != nil {
			return err
		}
		okf(cmd, "%s %s", verb, rec.LocalName)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d mod(s) unchanged", ErrPartialFailure, failed, len(names))
	}
	return nil
}
