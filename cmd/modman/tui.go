package main

import (
	"fmt"

	"modman/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and manage mods interactively",
	Long: `Open the interactive mod list.

Keys: space toggles the selected mod, u updates every mod of the profile,
d deletes (after confirmation), tab switches profile, r reloads, q quits.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	current := svc.CurrentProfile(profileName)
	if _, err := svc.Profiles().Get(current); err != nil {
		return err
	}

	var names []string
	for _, p := range svc.Profiles().List() {
		names = append(names, p.Name)
	}

	return tui.Run(svc.Manager(), names, current, svc.Config().Keybindings)
}
