package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"modman/internal/domain"
	"modman/internal/storage/db"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRun   string
	historyAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent mod operations",
	Long: `Show the operation journal, newest first.

Every install, update, toggle, delete and migration is recorded together
with its outcome. Items of one batch share a run id.

Examples:
  modman history
  modman history --limit 50 --all
  modman history --run 1f0c...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (0 for all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "only show entries of one run")
	historyCmd.Flags().BoolVarP(&historyAll, "all", "a", false, "include every profile")

	rootCmd.AddCommand(historyCmd)
}

type operationJSON struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Profile   string    `json:"profile"`
	Mod       string    `json:"mod"`
	Status    string    `json:"status"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Bytes     int64     `json:"bytes"`
	At        time.Time `json:"at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	filter := db.OperationFilter{RunID: historyRun, Limit: historyLimit}
	if !historyAll && historyRun == "" {
		filter.Profile = svc.CurrentProfile(profileName)
	}

	ops, err := svc.History(filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		out := make([]operationJSON, 0, len(ops))
		for _, op := range ops {
			out = append(out, operationJSON{
				RunID:     op.RunID,
				Kind:      string(op.Kind),
				Profile:   op.Profile,
				Mod:       op.ModName,
				Status:    string(op.Status),
				ErrorKind: op.ErrorKind,
				Detail:    op.Detail,
				Bytes:     op.Bytes,
				At:        op.CreatedAt,
			})
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	if len(ops) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No operations recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tPROFILE\tMOD\tSTATUS\tSIZE")
	fmt.Fprintln(w, "----\t----\t-------\t---\t------\t----")
	for _, op := range ops {
		size := "-"
		if op.Bytes > 0 {
			size = humanize.Bytes(uint64(op.Bytes))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(op.CreatedAt),
			op.Kind,
			op.Profile,
			truncate(op.ModName, 40),
			statusLabel(op),
			size,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if verbose {
		for _, op := range ops {
			if op.Status == domain.StatusFailed && op.Detail != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s: %s", subtle.Sprint(op.RunID[:min(8, len(op.RunID))]), op.ModName, op.Detail)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func statusLabel(op domain.Operation) string {
	switch op.Status {
	case domain.StatusOK:
		return good.Sprint("ok")
	case domain.StatusFailed:
		return bad.Sprintf("failed (%s)", op.ErrorKind)
	default:
		return warn.Sprint(string(op.Status))
	}
}
