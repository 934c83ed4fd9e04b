package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsAll bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download and update statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVarP(&statsAll, "all", "a", false, "aggregate every profile")

	rootCmd.AddCommand(statsCmd)
}

type statsJSONOutput struct {
	Profile      string     `json:"profile,omitempty"`
	Installed    int        `json:"installed"`
	Enabled      int        `json:"enabled"`
	Downloads    int        `json:"downloads"`
	Updates      int        `json:"updates"`
	Failures     int        `json:"failures"`
	TotalBytes   int64      `json:"total_bytes"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	profile := svc.CurrentProfile(profileName)
	if statsAll {
		profile = ""
	}

	stats, err := svc.Stats(profile)
	if err != nil {
		return err
	}

	mods := svc.Manager().Mods(profile)
	enabled := 0
	for _, m := range mods {
		if m.Enabled {
			enabled++
		}
	}

	if jsonOutput {
		out := statsJSONOutput{
			Profile:    profile,
			Installed:  len(mods),
			Enabled:    enabled,
			Downloads:  stats.Downloads,
			Updates:    stats.Updates,
			Failures:   stats.Failures,
			TotalBytes: stats.TotalBytes,
		}
		if !stats.LastActivity.IsZero() {
			out.LastActivity = &stats.LastActivity
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	out := cmd.OutOrStdout()
	if profile != "" {
		fmt.Fprintf(out, "Profile: %s\n", bold.Sprint(profile))
	} else {
		fmt.Fprintf(out, "%s\n", bold.Sprint("All profiles"))
	}
	fmt.Fprintf(out, "  Installed:  %d (%d enabled)\n", len(mods), enabled)
	fmt.Fprintf(out, "  Downloads:  %d\n", stats.Downloads)
	fmt.Fprintf(out, "  Updates:    %d\n", stats.Updates)
	fmt.Fprintf(out, "  Failures:   %d\n", stats.Failures)
	fmt.Fprintf(out, "  Downloaded: %s\n", humanize.Bytes(uint64(max(stats.TotalBytes, 0))))
	if !stats.LastActivity.IsZero() {
		fmt.Fprintf(out, "  Last activity: %s\n", humanize.Time(stats.LastActivity))
	}
	return nil
}
