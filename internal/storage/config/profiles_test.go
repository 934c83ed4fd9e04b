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

func newStore(t *testing.T) (*config.ProfileStore, string, string) {
	t.Helper()
	configDir := t.TempDir()
	defaultDir := filepath.Join(t.TempDir(), "mods")
	s, err := config.LoadProfiles(configDir, defaultDir)
	require.NoError(t, err)
	return s, configDir, defaultDir
}

func TestLoadProfiles_SynthesizesDefault(t *testing.T) {
	s, configDir, defaultDir := newStore(t)

	p, err := s.Get(domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, defaultDir, p.Directory)
	assert.True(t, p.AutoExtract)

	_, err = os.Stat(filepath.Join(configDir, "profiles.yaml"))
	assert.NoError(t, err, "synthesized default is persisted")
}

func TestLoadProfiles_FromFile(t *testing.T) {
	configDir := t.TempDir()
	content := `
profiles:
  Modded:
    directory: /games/modded
  Vanilla:
    directory: /games/vanilla
    auto_extract: false
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "profiles.yaml"), []byte(content), 0644))

	s, err := config.LoadProfiles(configDir, "/unused")
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Modded", list[0].Name)
	assert.True(t, list[0].AutoExtract)
	assert.Equal(t, "Vanilla", list[1].Name)
	assert.False(t, list[1].AutoExtract)

	_, err = s.Get(domain.DefaultProfileName)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileStore_CreatePersists(t *testing.T) {
	s, configDir, defaultDir := newStore(t)
	dir := t.TempDir()

	require.NoError(t, s.Create("Modded", dir))
	assert.ErrorIs(t, s.Create("Modded", dir), domain.ErrProfileExists)
	assert.ErrorIs(t, s.Create("", dir), domain.ErrInvalidRequest)

	reloaded, err := config.LoadProfiles(configDir, defaultDir)
	require.NoError(t, err)
	p, err := reloaded.Get("Modded")
	require.NoError(t, err)
	assert.Equal(t, dir, p.Directory)
}

func TestProfileStore_GetReturnsCopy(t *testing.T) {
	s, _, defaultDir := newStore(t)

	p, err := s.Get(domain.DefaultProfileName)
	require.NoError(t, err)
	p.Directory = "/tampered"

	again, err := s.Get(domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, defaultDir, again.Directory)
}

func TestProfileStore_Rename(t *testing.T) {
	s, _, _ := newStore(t)

	assert.ErrorIs(t, s.Rename(domain.DefaultProfileName, "Main"), domain.ErrProtectedProfile,
		"the only Default profile cannot be renamed")

	require.NoError(t, s.Create("Modded", t.TempDir()))
	assert.ErrorIs(t, s.Rename("Modded", domain.DefaultProfileName), domain.ErrProfileExists)
	assert.ErrorIs(t, s.Rename("Missing", "X"), domain.ErrProfileNotFound)

	require.NoError(t, s.Rename("Modded", "Hardcore"))
	_, err := s.Get("Modded")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	p, err := s.Get("Hardcore")
	require.NoError(t, err)
	assert.Equal(t, "Hardcore", p.Name)
}

func TestProfileStore_Delete(t *testing.T) {
	s, _, defaultDir := newStore(t)

	assert.ErrorIs(t, s.Delete(domain.DefaultProfileName), domain.ErrProtectedProfile)

	require.NoError(t, s.Create("Modded", t.TempDir()))
	require.NoError(t, s.Delete(domain.DefaultProfileName))
	assert.Len(t, s.List(), 1)

	// Removing the last remaining profile brings Default back.
	require.NoError(t, s.Delete("Modded"))
	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.DefaultProfileName, list[0].Name)
	assert.Equal(t, defaultDir, list[0].Directory)

	assert.ErrorIs(t, s.Delete("Missing"), domain.ErrProfileNotFound)
}

func TestProfileStore_SetDirectory(t *testing.T) {
	s, _, _ := newStore(t)
	dir := t.TempDir()

	require.NoError(t, s.SetDirectory(domain.DefaultProfileName, dir))
	p, err := s.Get(domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Directory)

	assert.ErrorIs(t, s.SetDirectory("Missing", dir), domain.ErrProfileNotFound)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "mods"), config.ExpandPath("~/mods"))
	assert.Equal(t, home, config.ExpandPath("~"))
	assert.Equal(t, "/abs/path", config.ExpandPath("/abs/path"))
	assert.Equal(t, "~user/x", config.ExpandPath("~user/x"))
}
