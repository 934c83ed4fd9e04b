package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <file>...",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Delete installed mods",
	Long: `Delete mods from a profile, removing their files whether enabled or disabled.

Examples:
  modman delete BetterHUD.pak
  modman delete BetterHUD.pak Extra.pak --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	profile := svc.CurrentProfile(profileName)

	if !deleteYes {
		ok, err := confirm(cmd, fmt.Sprintf("Delete %s from profile %s?", strings.Join(args, ", "), profile))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return ErrCancelled
		}
	}

	report, err := svc.Manager().Delete(profile, args...)
	if err := saveWarning(cmd, err); err != nil {
		return err
	}

	for _, name := range report.Deleted {
		okf(cmd, "Deleted %s", name)
	}
	for _, name := range report.Skipped {
		warnf(cmd, "%s is not installed in profile %s", name, profile)
	}
	printFailures(cmd, report.Failed)

	if len(report.Deleted) == 0 && len(report.Failed) == 0 {
		return fmt.Errorf("nothing deleted")
	}
	if len(report.Failed) > 0 || len(report.Skipped) > 0 {
		return fmt.Errorf("%w: deleted %d of %d", ErrPartialFailure, len(report.Deleted), len(args))
	}
	return nil
}
