package core

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"modman/internal/domain"
)

// matcher finds the on-disk files that belong to a record inside one
// directory (the profile directory or its .disabled subdirectory).
type matcher struct {
	mode   domain.MatchMode
	logger *log.Logger
}

// find returns the slash-separated names under dir that belong to localName.
// An exact relative path match always wins. In contains mode, when nothing
// matches exactly, top-level regular files whose name contains the record's
// base name are returned instead.
func (m matcher) find(dir, localName string) []string {
	if isRegular(filepath.Join(dir, filepath.FromSlash(localName))) {
		return []string{localName}
	}
	if m.mode != domain.MatchContains {
		return nil
	}

	needle := path.Base(localName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.Contains(e.Name(), needle) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) > 0 {
		m.logger.Printf("match: %s not found in %s, using substring matches %v", localName, dir, names)
	}
	return names
}

func isRegular(p string) bool {
	info, err := os.Lstat(p)
	return err == nil && info.Mode().IsRegular()
}
