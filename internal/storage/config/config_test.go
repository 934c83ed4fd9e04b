package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"modman/internal/domain"
	"modman/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultProfileName, cfg.DefaultProfile)
	assert.Equal(t, 3, cfg.DownloadAttempts)
	assert.Equal(t, domain.MatchExact, cfg.MatchMode)
	assert.Equal(t, 10, cfg.KeepLogs)
	assert.Equal(t, "vim", cfg.Keybindings)
	assert.True(t, cfg.Hooks.IsEmpty())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
default_profile: Modded
download_attempts: 5
match_mode: contains
keep_logs: 3
keybindings: standard
hooks:
  install:
    after_each: /scripts/notify.sh
  update:
    before_all: /scripts/backup.sh
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Modded", cfg.DefaultProfile)
	assert.Equal(t, 5, cfg.DownloadAttempts)
	assert.Equal(t, domain.MatchContains, cfg.MatchMode)
	assert.Equal(t, 3, cfg.KeepLogs)
	assert.Equal(t, "standard", cfg.Keybindings)
	assert.Equal(t, "/scripts/notify.sh", cfg.Hooks.Install.AfterEach)
	assert.Equal(t, "/scripts/backup.sh", cfg.Hooks.Update.BeforeAll)
}

func TestLoadConfig_InvalidAttemptsFallBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("download_attempts: 0\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DownloadAttempts)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("keep_logs: [oops"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestConfig_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DefaultProfile = "Other"
	cfg.MatchMode = domain.MatchContains

	require.NoError(t, cfg.Save(dir))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Other", loaded.DefaultProfile)
	assert.Equal(t, domain.MatchContains, loaded.MatchMode)
}
