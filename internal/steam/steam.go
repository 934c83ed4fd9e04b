// Package steam locates games installed through Steam so a profile can be
// pointed at a game's folder by app ID.
package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"modman/internal/domain"
)

// App is an installed Steam game
type App struct {
	AppID       string
	Name        string
	InstallPath string // e.g. <library>/steamapps/common/Deep Rock Galactic
}

// FindRoots returns the Steam installations present on this machine. A
// non-empty override (usually $STEAM_ROOT) is searched first.
func FindRoots(override string) []string {
	var candidates []string
	if override != "" {
		candidates = append(candidates, override)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
		)
	}

	var roots []string
	seen := make(map[string]bool)
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		// ~/.steam/steam is normally a symlink to ~/.local/share/Steam
		key := p
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			key = resolved
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, p)
	}
	return roots
}

// LibraryPaths lists the library folders of a Steam root from
// steamapps/libraryfolders.vdf. Without that file the root is its own library.
func LibraryPaths(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if errors.Is(err, os.ErrNotExist) {
		return []string{root}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening libraryfolders.vdf: %w", err)
	}
	defer f.Close()

	doc, err := ParseVDF(f)
	if err != nil {
		return nil, fmt.Errorf("reading libraryfolders.vdf: %w", err)
	}

	folders := doc.Block("libraryfolders")
	if folders == nil {
		return []string{root}, nil
	}
	keys := make([]int, 0, len(folders))
	for k := range folders {
		if n, err := strconv.Atoi(k); err == nil {
			keys = append(keys, n)
		}
	}
	sort.Ints(keys)

	var paths []string
	for _, n := range keys {
		if p := folders.Block(strconv.Itoa(n)).String("path"); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{root}, nil
	}
	return paths, nil
}

// ReadManifest parses an appmanifest_<id>.acf file
func ReadManifest(path string) (*App, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := ParseVDF(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	state := doc.Block("AppState")
	if state == nil {
		return nil, fmt.Errorf("reading %s: missing AppState", filepath.Base(path))
	}
	return &App{
		AppID:       state.String("appid"),
		Name:        state.String("name"),
		InstallPath: state.String("installdir"),
	}, nil
}

// FindApp searches every library of every root for an installed app. The
// returned InstallPath is absolute and exists on disk.
func FindApp(roots []string, appID string) (*App, error) {
	if _, err := strconv.Atoi(appID); err != nil {
		return nil, fmt.Errorf("%w: steam app id must be numeric, got %q", domain.ErrInvalidRequest, appID)
	}

	for _, root := range roots {
		libraries, err := LibraryPaths(root)
		if err != nil {
			continue
		}
		for _, lib := range libraries {
			app, err := ReadManifest(filepath.Join(lib, "steamapps", "appmanifest_"+appID+".acf"))
			if err != nil || app.InstallPath == "" {
				continue
			}
			app.InstallPath = filepath.Join(lib, "steamapps", "common", app.InstallPath)
			if info, err := os.Stat(app.InstallPath); err != nil || !info.IsDir() {
				continue
			}
			if app.AppID == "" {
				app.AppID = appID
			}
			return app, nil
		}
	}
	return nil, fmt.Errorf("%w: steam app %s is not installed", domain.ErrInvalidRequest, appID)
}
