package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"modman/internal/core"
	"modman/internal/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
	subtle = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)
)

// okf prints a success line with a check mark
func okf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good.Sprint("✓"), fmt.Sprintf(format, args...))
}

// failf prints a failure line with a cross
func failf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bad.Sprint("✗"), fmt.Sprintf(format, args...))
}

// warnf prints a non-fatal warning to stderr
func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", warn.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

// saveWarning turns a failed database save into a warning. The change is
// live in memory and is written again by the next successful save.
func saveWarning(cmd *cobra.Command, err error) error {
	if errors.Is(err, domain.ErrSaveFailed) {
		warnf(cmd, "%v", err)
		return nil
	}
	return err
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// confirm asks a yes/no question on the command's input. Anything but y/yes declines.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading input: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// progressPrinter renders progress notifications as a single rewritten line
type progressPrinter struct {
	w      io.Writer
	active bool
}

func newProgressPrinter(cmd *cobra.Command) *progressPrinter {
	if jsonOutput {
		return &progressPrinter{w: io.Discard}
	}
	return &progressPrinter{w: cmd.ErrOrStderr()}
}

// report is a domain.ProgressFunc
func (p *progressPrinter) report(pr domain.Progress) {
	p.active = true
	prefix := ""
	if pr.Total > 1 {
		prefix = fmt.Sprintf("[%d/%d] ", pr.Index, pr.Total)
	}
	fmt.Fprintf(p.w, "\r\033[K%s%-8s %s %3.0f%%", prefix, pr.Phase, truncate(pr.Item, 40), pr.Percent)
}

// done ends the progress line
func (p *progressPrinter) done() {
	if p.active {
		fmt.Fprintln(p.w)
		p.active = false
	}
}

// printFailures lists batch item failures with their taxonomy kind
func printFailures(cmd *cobra.Command, failures []core.ItemFailure) {
	for _, f := range failures {
		failf(cmd, "%s: %s", f.LocalName, subtle.Sprintf("[%s] %v", domain.ErrorKind(f.Err), f.Err))
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
