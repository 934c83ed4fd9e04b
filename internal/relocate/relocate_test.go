package relocate_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"modman/internal/domain"
	"modman/internal/relocate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMover_Relocate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mod.pak")
	dst := filepath.Join(dir, ".disabled", "mod.pak")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	m := relocate.New(nil)
	require.NoError(t, m.Relocate(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)
}

func TestMover_Relocate_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new.pak")
	dst := filepath.Join(dir, "out", "mod.pak")
	require.NoError(t, os.WriteFile(src, []byte("fresh"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0644))

	require.NoError(t, relocate.New(nil).Relocate(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), content)
}

func TestMover_Relocate_SamePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mod.pak")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	require.NoError(t, relocate.New(nil).Relocate(src, filepath.Join(dir, ".", "mod.pak")))

	content, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)
}

func TestMover_Relocate_CopyFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mod.pak")
	dst := filepath.Join(dir, "elsewhere", "mod.pak")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0640))

	m := relocate.NewWithRename(func(_, _ string) error {
		return errors.New("invalid cross-device link")
	})
	require.NoError(t, m.Relocate(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be removed after copy")

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestMover_Relocate_BothFail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing.pak")
	dst := filepath.Join(dir, "out", "missing.pak")

	err := relocate.New(nil).Relocate(src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRelocationFailed)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "no partial destination should remain")
}

func TestMover_Relocate_DestinationParentIsFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mod.pak")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := relocate.New(nil).Relocate(src, filepath.Join(blocker, "mod.pak"))
	assert.ErrorIs(t, err, domain.ErrRelocationFailed)

	_, statErr := os.Stat(src)
	assert.NoError(t, statErr, "source must survive a failed relocation")
}
