package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"modman/internal/steam"

	"github.com/spf13/cobra"
)

var profileSteamApp string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage mod profiles",
	Long: `Manage mod profiles.

Each profile is bound to one directory, typically a game's mod folder.
Mods are installed into the current profile, chosen with --profile or
'modman profile use'.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name> <directory>",
	Short: "Create a new profile",
	Long: `Create a new profile bound to a directory.

With --steam the game's install folder is looked up in the local Steam
libraries (or $STEAM_ROOT) and <directory>, if given, is taken relative to it.

Examples:
  modman profile create DRG ~/.steam/steam/steamapps/common/DRG/FSD/Content/Paks
  modman profile create DRG --steam 548430 FSD/Content/Paks/LogicMods`,
	Args: func(cmd *cobra.Command, args []string) error {
		if profileSteamApp != "" {
			return cobra.RangeArgs(1, 2)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runProfileCreate,
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileRename,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Long: `Delete a profile.

A profile that still has installed mods cannot be deleted; delete its mods
first. The profile directory itself is left on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileDelete,
}

var profileMoveCmd = &cobra.Command{
	Use:   "move <name> <directory>",
	Short: "Move a profile to a new directory",
	Long: `Rebind a profile to a new directory, moving every installed mod with it.

Only files modman installed are moved; anything else stays behind. A mod that
fails to move keeps its old location and is reported, and the profile is
rebound regardless.

Examples:
  modman profile move Default /mnt/games/mods`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileMove,
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUse,
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileSteamApp, "steam", "", "resolve the directory from an installed Steam app ID")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileMoveCmd)
	profileCmd.AddCommand(profileUseCmd)

	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	current := svc.CurrentProfile(profileName)
	profiles := svc.Profiles().List()

	if jsonOutput {
		type profileJSON struct {
			Name      string `json:"name"`
			Directory string `json:"directory"`
			Mods      int    `json:"mods"`
			Current   bool   `json:"current"`
		}
		out := make([]profileJSON, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, profileJSON{p.Name, p.Directory, svc.Manager().ProfileInUse(p.Name), p.Name == current})
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIRECTORY\tMODS")
	fmt.Fprintln(w, "----\t---------\t----")
	for _, p := range profiles {
		name := p.Name
		if name == current {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", name, p.Directory, svc.Manager().ProfileInUse(p.Name))
	}
	return w.Flush()
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	dir, err := profileCreateDir(args)
	if err != nil {
		return err
	}
	if err := svc.Profiles().Create(args[0], dir); err != nil {
		return err
	}
	p, err := svc.Profiles().Get(args[0])
	if err != nil {
		return err
	}
	okf(cmd, "Created profile %s -> %s", p.Name, p.Directory)
	return nil
}

// profileCreateDir returns the directory a new profile binds to, looking up
// the Steam install folder when --steam is set
func profileCreateDir(args []string) (string, error) {
	if profileSteamApp == "" {
		return args[1], nil
	}
	app, err := steam.FindApp(steam.FindRoots(os.Getenv("STEAM_ROOT")), profileSteamApp)
	if err != nil {
		return "", err
	}
	if len(args) < 2 {
		return app.InstallPath, nil
	}
	if filepath.IsAbs(args[1]) {
		return "", fmt.Errorf("with --steam the directory must be relative to %s", app.InstallPath)
	}
	return filepath.Join(app.InstallPath, args[1]), nil
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	n, err := svc.Manager().RenameProfile(args[0], args[1])
	if n == 0 && err != nil {
		return err
	}
	if err := saveWarning(cmd, err); err != nil {
		return err
	}
	if svc.Config().DefaultProfile == args[0] {
		if err := svc.SetDefaultProfile(args[1]); err != nil {
			warnf(cmd, "updating default profile: %v", err)
		}
	}
	okf(cmd, "Renamed profile %s to %s (%d mod(s))", args[0], args[1], n)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	name := args[0]
	if n := svc.Manager().ProfileInUse(name); n > 0 {
		return fmt.Errorf("profile %s still has %d installed mod(s); delete them first", name, n)
	}
	if err := svc.Profiles().Delete(name); err != nil {
		return err
	}
	okf(cmd, "Deleted profile %s", name)
	return nil
}

func runProfileMove(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	report, err := svc.Manager().MigrateProfileDirectory(args[0], args[1])
	if report == nil {
		return err
	}
	if err := saveWarning(cmd, err); err != nil {
		return err
	}

	if report.From == report.To {
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %s already uses %s\n", args[0], report.To)
		return nil
	}

	okf(cmd, "Profile %s now uses %s", args[0], report.To)
	fmt.Fprintf(cmd.OutOrStdout(), "  moved %d, skipped %d, failed %d\n", len(report.Moved), len(report.Skipped), len(report.Failed))
	if verbose {
		for _, name := range report.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", subtle.Sprint("not on disk:"), name)
		}
	}
	printFailures(cmd, report.Failed)

	if len(report.Failed) > 0 {
		return fmt.Errorf("%w: %d mod(s) stayed in %s", ErrPartialFailure, len(report.Failed), report.From)
	}
	return nil
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	if err := svc.SetDefaultProfile(args[0]); err != nil {
		return err
	}
	okf(cmd, "Default profile is now %s", args[0])
	return nil
}
