package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"modman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(domain.ErrUnknownMod))
	assert.Equal(t, 2, exitCode(ErrCancelled))
	assert.Equal(t, 3, exitCode(fmt.Errorf("%w: 1 of 2", ErrPartialFailure)))
}

func TestRootCmd_Commands(t *testing.T) {
	want := []string{"install", "update", "enable", "disable", "delete", "list", "profile", "auth", "history", "stats", "tui"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := rootCmd.Find([]string{"uninstall"})
	require.NoError(t, err)
	assert.Equal(t, "delete", cmd.Name(), "uninstall is an alias of delete")
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "data", "profile", "verbose", "json", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "p", rootCmd.PersistentFlags().Lookup("profile").Shorthand)
}

func TestGetServiceConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir, dataDir = "", ""

	cfg, err := getServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "modman"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "modman"), cfg.DataDir)

	configDir, dataDir = "/tmp/c", "/tmp/d"
	t.Cleanup(func() { configDir, dataDir = "", "" })
	cfg, err = getServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c", cfg.ConfigDir)
	assert.Equal(t, "/tmp/d", cfg.DataDir)
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	noColor = false
	assert.True(t, colorEnabled())

	noColor = true
	assert.False(t, colorEnabled())
	noColor = false

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled())
}

func TestTruncateAndMask(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	assert.Equal(t, "***", maskAPIKey("abc"))
	assert.Equal(t, "abc...xyz", maskAPIKey("abc123456xyz"))
}

func TestSourceDisplayName(t *testing.T) {
	assert.Equal(t, "mod.io", sourceDisplayName("modio"))
	assert.Equal(t, "NexusMods", sourceDisplayName("nexusmods"))
	assert.Equal(t, "CurseForge", sourceDisplayName("curseforge"))
	assert.Equal(t, "other", sourceDisplayName("other"))

	assert.NoError(t, checkSource("curseforge"))
	assert.Error(t, checkSource("steam"))
}
