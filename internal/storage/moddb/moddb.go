// Package moddb persists installed mod records as a JSON document keyed by
// local file name, keeping a .bak copy of the previous file on every save.
package moddb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"modman/internal/domain"
)

// BackupSuffix is appended to the database path for the pre-save copy
const BackupSuffix = ".bak"

// document is the on-disk layout: {"mods": {local_name: entry}}
type document struct {
	Mods map[string]*entry `json:"mods"`
}

type entry struct {
	Name          string `json:"name"`
	LocalName     string `json:"local_name"`
	ZipName       string `json:"zip_name"`
	URL           string `json:"url"`
	Profile       string `json:"profile"`
	InstalledPath string `json:"installed_path"`
	Enabled       *bool  `json:"enabled"`
	InstalledDate string `json:"installed_date"`
	UpdatedDate   string `json:"updated_date"`
}

// Store reads and writes the mod database file
type Store struct {
	path   string
	logger *log.Logger
}

// New creates a Store for the file at path. A nil logger discards
// recoverable load errors.
func New(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Load reads every record. A missing file yields an empty mapping; an
// unreadable or malformed file is logged and also yields an empty mapping.
func (s *Store) Load() map[string]*domain.ModRecord {
	mods := make(map[string]*domain.ModRecord)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Printf("moddb: reading %s: %v; starting with an empty database", s.path, err)
		}
		return mods
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Printf("moddb: parsing %s: %v; starting with an empty database", s.path, err)
		return mods
	}

	for key, e := range doc.Mods {
		if e == nil || key == "" {
			continue
		}
		mods[key] = e.toRecord(key)
	}
	return mods
}

// Save writes all records, first copying the existing file to path+".bak".
// A failed backup is logged and does not block the save.
func (s *Store) Save(mods map[string]*domain.ModRecord) error {
	doc := document{Mods: make(map[string]*entry, len(mods))}
	for key, r := range mods {
		doc.Mods[key] = fromRecord(r)
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling mod database: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating database dir: %w", err)
	}

	if err := s.backup(); err != nil {
		s.logger.Printf("moddb: backup failed: %v", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing mod database: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing mod database: %w", err)
	}
	return nil
}

func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.WriteFile(s.path+BackupSuffix, data, 0644)
}

func (e *entry) toRecord(key string) *domain.ModRecord {
	r := &domain.ModRecord{
		LocalName:     key,
		DisplayName:   e.Name,
		ArchiveName:   e.ZipName,
		SourceURL:     e.URL,
		Profile:       e.Profile,
		InstalledPath: e.InstalledPath,
		Enabled:       true,
		InstalledAt:   parseTime(e.InstalledDate),
		UpdatedAt:     parseTime(e.UpdatedDate),
	}
	if e.Enabled != nil {
		r.Enabled = *e.Enabled
	}
	if r.DisplayName == "" {
		r.DisplayName = key
	}
	if r.Profile == "" {
		r.Profile = domain.DefaultProfileName
	}
	return r
}

func fromRecord(r *domain.ModRecord) *entry {
	enabled := r.Enabled
	return &entry{
		Name:          r.DisplayName,
		LocalName:     r.LocalName,
		ZipName:       r.ArchiveName,
		URL:           r.SourceURL,
		Profile:       r.Profile,
		InstalledPath: r.InstalledPath,
		Enabled:       &enabled,
		InstalledDate: formatTime(r.InstalledAt),
		UpdatedDate:   formatTime(r.UpdatedAt),
	}
}

// timeLayouts accepts RFC 3339 and zone-less ISO 8601 timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
