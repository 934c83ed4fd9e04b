package domain

import (
	"path/filepath"
	"time"
)

// DisabledDirName is the per-profile subdirectory holding mods that are toggled off
const DisabledDirName = ".disabled"

// ModRecord tracks one physically distinct installed file.
// LocalName is the slash-separated path relative to InstalledPath and is the
// record's unique key.
type ModRecord struct {
	LocalName     string
	DisplayName   string
	ArchiveName   string // Source archive this file came from
	SourceURL     string // Remote URL used to (re)download the bundle
	Profile       string
	InstalledPath string // Profile directory the file belongs to
	Enabled       bool   // True when the file lives in InstalledPath, false when under .disabled
	InstalledAt   time.Time
	UpdatedAt     time.Time
}

// ActivePath is where the file lives while enabled
func (r *ModRecord) ActivePath() string {
	return filepath.Join(r.InstalledPath, filepath.FromSlash(r.LocalName))
}

// DisabledPath is where the file lives while disabled
func (r *ModRecord) DisabledPath() string {
	return filepath.Join(DisabledDir(r.InstalledPath), filepath.FromSlash(r.LocalName))
}

// CurrentPath returns the path the Enabled flag says the file occupies
func (r *ModRecord) CurrentPath() string {
	if r.Enabled {
		return r.ActivePath()
	}
	return r.DisabledPath()
}

// DisabledDir returns the disabled subdirectory of a profile directory
func DisabledDir(profileDir string) string {
	return filepath.Join(profileDir, DisabledDirName)
}

// ResolvedFile is what a source resolver turns a user-supplied URL into
type ResolvedFile struct {
	DownloadURL string
	FileName    string
	Size        int64 // Size in bytes, 0 when the source does not report it
}

// MatchMode controls how on-disk files are matched to a record's name
type MatchMode int

const (
	MatchExact    MatchMode = iota // Default: exact relative path
	MatchContains                  // Substring fallback on top-level file names
)

func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchContains:
		return "contains"
	default:
		return "unknown"
	}
}

// ParseMatchMode converts a string to MatchMode
func ParseMatchMode(s string) MatchMode {
	switch s {
	case "contains":
		return MatchContains
	default:
		return MatchExact
	}
}
