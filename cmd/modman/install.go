package main

import (
	"context"
	"fmt"

	"modman/internal/core"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Install a mod from a mod page URL",
	Long: `Install a mod from a mod.io, NexusMods or CurseForge page.

The page is resolved to its current file, which is downloaded into the
profile directory and unpacked. Every extracted file becomes an enabled mod.

Examples:
  modman install https://mod.io/g/drg/m/better-hud
  modman install https://www.nexusmods.com/stardewvalley/mods/2400 --profile Modded
  modman install https://www.curseforge.com/minecraft/mc-mods/jei/files/5101366`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

type installJSONOutput struct {
	RunID   string    `json:"run_id"`
	Profile string    `json:"profile"`
	Archive string    `json:"archive"`
	Bytes   int64     `json:"bytes"`
	Mods    []modJSON `json:"mods"`
}

func runInstall(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	profile := svc.CurrentProfile(profileName)
	if verbose && !jsonOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "Installing %s into profile %s\n", args[0], profile)
	}

	progress := newProgressPrinter(cmd)
	result, err := svc.Manager().Install(context.Background(), profile, args[0], progress.report)
	progress.done()
	if result == nil {
		return err
	}
	if err := saveWarning(cmd, err); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), installJSONOutput{
			RunID:   result.RunID,
			Profile: profile,
			Archive: result.ArchiveName,
			Bytes:   result.Bytes,
			Mods:    toModJSON(result.Records),
		})
	}

	printInstallResult(cmd, result)
	return nil
}

func printInstallResult(cmd *cobra.Command, result *core.InstallResult) {
	okf(cmd, "Installed %s (%s, %d file(s))", bold.Sprint(result.ArchiveName),
		humanize.Bytes(uint64(max(result.Bytes, 0))), len(result.Records))
	for _, rec := range result.Records {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", rec.LocalName, subtle.Sprintf("(%s)", rec.DisplayName))
	}
}
