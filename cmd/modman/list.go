package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"modman/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	Long: `List the mods installed in a profile.

Examples:
  modman list
  modman list --profile Modded
  modman list --all --json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "list mods of every profile")

	rootCmd.AddCommand(listCmd)
}

// modJSON is the JSON shape of one installed mod
type modJSON struct {
	LocalName   string    `json:"local_name"`
	DisplayName string    `json:"display_name"`
	Archive     string    `json:"archive,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	Profile     string    `json:"profile"`
	Enabled     bool      `json:"enabled"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toModJSON(recs []domain.ModRecord) []modJSON {
	out := make([]modJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, modJSON{
			LocalName:   r.LocalName,
			DisplayName: r.DisplayName,
			Archive:     r.ArchiveName,
			SourceURL:   r.SourceURL,
			Profile:     r.Profile,
			Enabled:     r.Enabled,
			Path:        r.CurrentPath(),
			InstalledAt: r.InstalledAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	profile := svc.CurrentProfile(profileName)
	if listAll {
		profile = ""
	} else if _, err := svc.Profiles().Get(profile); err != nil {
		return err
	}

	mods := svc.Manager().Mods(profile)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), toModJSON(mods))
	}

	out := cmd.OutOrStdout()
	if verbose && profile != "" {
		fmt.Fprintf(out, "Installed mods in profile %s\n\n", profile)
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods installed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if listAll {
		fmt.Fprintln(w, "FILE\tNAME\tPROFILE\tENABLED\tUPDATED")
		fmt.Fprintln(w, "----\t----\t-------\t-------\t-------")
	} else {
		fmt.Fprintln(w, "FILE\tNAME\tENABLED\tUPDATED")
		fmt.Fprintln(w, "----\t----\t-------\t-------")
	}

	enabled := 0
	for _, mod := range mods {
		state := "no"
		if mod.Enabled {
			state = "yes"
			enabled++
		}
		updated := "-"
		if !mod.UpdatedAt.IsZero() {
			updated = humanize.Time(mod.UpdatedAt)
		}
		if listAll {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", truncate(mod.LocalName, 40), truncate(mod.DisplayName, 30), mod.Profile, state, updated)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(mod.LocalName, 40), truncate(mod.DisplayName, 30), state, updated)
		}
	}
	w.Flush()

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s), %d enabled\n", len(mods), enabled)
	}

	return nil
}
