package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"modman/internal/core"
	"modman/internal/logx"
	"modman/internal/storage/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user cancels an operation (e.g. prompt declined).
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

// ErrPartialFailure is returned when a batch finished but some items failed.
// When returned from a command, Execute exits with code 3.
var ErrPartialFailure = errors.New("some items failed")

var (
	version = "0.4.0"

	// Global flags
	configDir   string
	dataDir     string
	profileName string
	verbose     bool
	jsonOutput  bool
	noColor     bool

	// httpClient is shared by resolvers and the downloader; nil uses http.DefaultClient
	httpClient *http.Client
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modman",
	Short: "modman - install, update and toggle game mods",
	Long: `modman keeps a per-profile mod folder in sync with remote mod pages.

It downloads mods from mod.io, NexusMods and CurseForge, unpacks their archives into the
active profile's directory, and tracks every installed file so it can be
enabled, disabled, updated or deleted later.

Run 'modman --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !colorEnabled() {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/modman)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/modman)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to operate on (default: default_profile from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output, mirrors the log to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, update, history, stats)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// exitCode maps a command error to the process exit status.
// 0 = success, 1 = error, 2 = user cancelled, 3 = partial batch failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrCancelled):
		return 2
	case errors.Is(err, ErrPartialFailure):
		return 3
	default:
		return 1
	}
}

// Execute runs the root command and exits with the mapped status.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
// Cancellation exits with code 2 without printing JSON, since it is a user action, not an error.
func Execute() {
	err := rootCmd.Execute()
	code := exitCode(err)
	if code == 0 {
		return
	}
	if code != 2 {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", bad.Sprint("Error:"), err)
		}
	}
	os.Exit(code)
}

// session is a service plus the log file it writes to
type session struct {
	*core.Service
	logFile io.Closer
}

// Close releases the service and the log file
func (s *session) Close() error {
	err := s.Service.Close()
	if s.logFile != nil {
		if cerr := s.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// initService creates and initializes the core service
func initService(cmd *cobra.Command) (*session, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	keep := config.Default().KeepLogs
	if appConfig, err := config.Load(cfg.ConfigDir); err == nil {
		keep = appConfig.KeepLogs
	}
	logger, logFile, err := logx.New(filepath.Join(cfg.DataDir, "logs"), keep)
	if err != nil {
		return nil, err
	}
	if verbose {
		logger.SetOutput(io.MultiWriter(logger.Writer(), cmd.ErrOrStderr()))
	}
	cfg.Logger = logger

	svc, err := core.NewService(cfg)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	logger.Printf("modman %s: %s", version, cmd.CommandPath())
	return &session{Service: svc, logFile: logFile}, nil
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		HTTPClient: httpClient,
	}
	if cfg.ConfigDir != "" && cfg.DataDir != "" {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "modman")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "modman")
	}
	return cfg, nil
}

// closeService closes svc, reporting a failure as a warning
func closeService(cmd *cobra.Command, svc *session) {
	if err := svc.Close(); err != nil {
		warnf(cmd, "closing service: %v", err)
	}
}
