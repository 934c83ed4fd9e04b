package main

import (
	"context"
	"fmt"

	"modman/internal/domain"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-download every mod of a profile",
	Long: `Refresh every installed mod of a profile from its source page.

Each archive is resolved and downloaded again, the old files are replaced,
and files that were disabled stay disabled. One failing mod does not stop
the others; the command exits with status 3 when any mod failed.

Examples:
  modman update
  modman update --profile Modded --json`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

type updateFailureJSON struct {
	LocalName string `json:"local_name"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

type updateJSONOutput struct {
	RunID     string              `json:"run_id"`
	Profile   string              `json:"profile"`
	Total     int                 `json:"total"`
	Succeeded []string            `json:"succeeded"`
	Failed    []updateFailureJSON `json:"failed"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	profile := svc.CurrentProfile(profileName)

	progress := newProgressPrinter(cmd)
	report, err := svc.Manager().Update(context.Background(), profile, progress.report)
	progress.done()
	if report == nil {
		return err
	}
	if err := saveWarning(cmd, err); err != nil {
		return err
	}

	if jsonOutput {
		out := updateJSONOutput{
			RunID:     report.RunID,
			Profile:   profile,
			Total:     report.Total,
			Succeeded: report.Succeeded,
			Failed:    []updateFailureJSON{},
		}
		if out.Succeeded == nil {
			out.Succeeded = []string{}
		}
		for _, f := range report.Failed {
			out.Failed = append(out.Failed, updateFailureJSON{
				LocalName: f.LocalName,
				Kind:      domain.ErrorKind(f.Err),
				Error:     f.Err.Error(),
			})
		}
		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else if report.Total == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No mods installed in profile %s.\n", profile)
	} else {
		for _, name := range report.Succeeded {
			okf(cmd, "%s", name)
		}
		printFailures(cmd, report.Failed)
		fmt.Fprintf(cmd.OutOrStdout(), "\nUpdated %d of %d mod(s)\n", len(report.Succeeded), report.Total)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d mod(s) could not be updated", ErrPartialFailure, len(report.Failed), report.Total)
	}
	return nil
}
