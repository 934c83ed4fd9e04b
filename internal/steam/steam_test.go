package steam

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"modman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// installApp lays out an appmanifest and its install folder inside lib
func installApp(t *testing.T, lib, appID, name, dir string) string {
	t.Helper()
	writeFile(t, filepath.Join(lib, "steamapps", "appmanifest_"+appID+".acf"), fmt.Sprintf(`"AppState"
{
	"appid"		"%s"
	"name"		"%s"
	"installdir"		"%s"
}`, appID, name, dir))
	install := filepath.Join(lib, "steamapps", "common", dir)
	require.NoError(t, os.MkdirAll(install, 0755))
	return install
}

func TestLibraryPaths(t *testing.T) {
	root := t.TempDir()

	paths, err := LibraryPaths(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, paths, "no libraryfolders.vdf means the root is the library")

	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"), `"libraryfolders"
{
	"10" { "path" "/mnt/ten" }
	"1" { "path" "/mnt/one" }
	"0" { "path" "/home/me/.steam/steam" }
	"contentstatsid" "123"
}`)
	paths, err = LibraryPaths(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/me/.steam/steam", "/mnt/one", "/mnt/ten"}, paths)

	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"), `"libraryfolders" {`)
	_, err = LibraryPaths(root)
	assert.Error(t, err)
}

func TestFindApp_SearchesEveryLibrary(t *testing.T) {
	root := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"), fmt.Sprintf(`"libraryfolders"
{
	"0" { "path" "%s" }
	"1" { "path" "%s" }
}`, root, second))
	installApp(t, root, "413150", "Stardew Valley", "Stardew Valley")
	want := installApp(t, second, "548430", "Deep Rock Galactic", "Deep Rock Galactic")

	app, err := FindApp([]string{root}, "548430")
	require.NoError(t, err)
	assert.Equal(t, "548430", app.AppID)
	assert.Equal(t, "Deep Rock Galactic", app.Name)
	assert.Equal(t, want, app.InstallPath)
}

func TestFindApp_ManifestWithoutFolderIsSkipped(t *testing.T) {
	root := t.TempDir()
	install := installApp(t, root, "548430", "Deep Rock Galactic", "DRG")
	require.NoError(t, os.Remove(install))

	_, err := FindApp([]string{root}, "548430")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "not installed")
}

func TestFindApp_RejectsNonNumericID(t *testing.T) {
	_, err := FindApp([]string{t.TempDir()}, "../../etc")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "numeric")
}

func TestFindRoots_Override(t *testing.T) {
	override := t.TempDir()
	roots := FindRoots(override)
	require.NotEmpty(t, roots)
	assert.Equal(t, override, roots[0])

	assert.NotContains(t, FindRoots(filepath.Join(override, "missing")), filepath.Join(override, "missing"))
}
