package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"modman/internal/core"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authNoValidate bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API keys for mod sources",
	Long: `Manage API keys for mod.io, NexusMods and CurseForge.

A key in the environment (MODIO_API_KEY, NEXUSMODS_API_KEY,
CURSEFORGE_API_KEY) takes precedence over a stored one.

Use 'modman auth login' to store a key.
Use 'modman auth logout' to remove it.
Use 'modman auth status' to check what is configured.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [source]",
	Short: "Store an API key for a mod source",
	Long: `Store an API key for a mod source.

If no source is specified, you will be prompted to select one.

Supported sources:
  - modio
  - nexusmods
  - curseforge

For mod.io:
  1. Visit https://mod.io/me/access
  2. Generate an API key under "API Access"

For NexusMods:
  1. Visit https://www.nexusmods.com/users/myaccount?tab=api
  2. Copy your Personal API Key (downloads require a premium account)

For CurseForge:
  1. Visit https://console.curseforge.com/
  2. Create an API key under "API Keys"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout <source>",
	Short: "Remove the stored API key for a mod source",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which sources have an API key",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().BoolVar(&authNoValidate, "no-validate", false, "store the key without checking it against the API")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// promptForSource displays an interactive menu to select a source
func promptForSource(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Select a source:")
	for i, id := range core.SourceIDs {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, sourceDisplayName(id))
	}
	fmt.Fprint(out, "Enter choice (1-"+strconv.Itoa(len(core.SourceIDs))+"): ")

	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || choice < 1 || choice > len(core.SourceIDs) {
		return "", fmt.Errorf("invalid choice: please enter a number between 1 and %d", len(core.SourceIDs))
	}
	return core.SourceIDs[choice-1], nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	var sourceID string
	if len(args) > 0 {
		sourceID = args[0]
		if err := checkSource(sourceID); err != nil {
			return err
		}
	} else {
		var err error
		sourceID, err = promptForSource(cmd, reader)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	apiKey, err := readAPIKey(cmd, reader)
	if err != nil {
		return fmt.Errorf("reading API key: %w", err)
	}
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	if !authNoValidate {
		fmt.Fprint(cmd.OutOrStdout(), "Validating... ")
		if err := svc.ValidateKey(context.Background(), sourceID, apiKey); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "failed")
			return fmt.Errorf("invalid API key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "done")
	}

	if err := svc.SaveAPIKey(sourceID, apiKey); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	okf(cmd, "Stored API key for %s", sourceDisplayName(sourceID))
	if env := core.APIKeyEnv[sourceID]; os.Getenv(env) != "" {
		warnf(cmd, "%s is set and overrides the stored key", env)
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	sourceID := args[0]
	if err := checkSource(sourceID); err != nil {
		return err
	}

	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	if err := svc.DeleteAPIKey(sourceID); err != nil {
		return fmt.Errorf("removing API key: %w", err)
	}

	okf(cmd, "Removed %s credentials", sourceDisplayName(sourceID))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	svc, err := initService(cmd)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(cmd, svc)

	for _, id := range core.SourceIDs {
		key, origin, err := svc.APIKey(id)
		if err != nil {
			return fmt.Errorf("checking %s: %w", id, err)
		}

		name := sourceDisplayName(id)
		switch origin {
		case "env":
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s via %s (key: %s)\n", name, good.Sprint("authenticated"), core.APIKeyEnv[id], maskAPIKey(key))
		case "stored":
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (key: %s)\n", name, good.Sprint("authenticated"), maskAPIKey(key))
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, warn.Sprint("not authenticated"))
		}
	}
	return nil
}

func checkSource(sourceID string) error {
	if !slices.Contains(core.SourceIDs, sourceID) {
		return fmt.Errorf("unsupported source: %s (supported: %s)", sourceID, strings.Join(core.SourceIDs, ", "))
	}
	return nil
}

// sourceDisplayName returns the display name for a source
func sourceDisplayName(sourceID string) string {
	switch sourceID {
	case "modio":
		return "mod.io"
	case "nexusmods":
		return "NexusMods"
	case "curseforge":
		return "CurseForge"
	default:
		return sourceID
	}
}

// readAPIKey prompts for and reads an API key, hiding the input on a terminal
func readAPIKey(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter API key: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	// Piped input
	key, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// maskAPIKey returns a masked version of the API key (shows first 3 and last 3 chars)
func maskAPIKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
