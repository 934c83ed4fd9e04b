package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"modman/internal/domain"
)

// MigrationReport summarizes a profile directory migration
type MigrationReport struct {
	RunID   string
	From    string
	To      string
	Moved   []string
	Skipped []string // Tracked records whose file was not on disk
	Failed  []ItemFailure
}

// MigrateProfileDirectory moves every tracked file of the profile's current
// directory to newDir and rebinds the profile. Untracked files stay behind.
// Disabled files move to newDir/.disabled.
//
// Failed moves are reported, not rolled back: moved records point at newDir,
// failed ones keep their old path, and the profile is rebound regardless.
func (m *Manager) MigrateProfileDirectory(profileName, newDir string) (*MigrationReport, error) {
	if strings.TrimSpace(newDir) == "" {
		return nil, fmt.Errorf("%w: new directory is required", domain.ErrInvalidRequest)
	}
	to, err := filepath.Abs(newDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", domain.ErrInvalidRequest, newDir, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.profile(profileName)
	if err != nil {
		return nil, err
	}

	from := filepath.Clean(profile.Directory)
	report := &MigrationReport{RunID: m.newRunID(), From: from, To: to}
	if from == to {
		return report, nil
	}

	tracked := m.sorted(func(r *domain.ModRecord) bool { return filepath.Clean(r.InstalledPath) == from })
	for _, rec := range tracked {
		op := domain.Operation{RunID: report.RunID, Kind: domain.OpMigrate, Profile: profile.Name, ModName: rec.LocalName}

		srcDir, dstDir := from, to
		if !rec.Enabled {
			srcDir, dstDir = domain.DisabledDir(from), domain.DisabledDir(to)
		}

		names := m.match.find(srcDir, rec.LocalName)
		if len(names) == 0 {
			rec.InstalledPath = to
			report.Skipped = append(report.Skipped, rec.LocalName)
			op.Status = domain.StatusSkipped
			op.Detail = "file not found in " + srcDir
			m.record(op)
			continue
		}

		var moveErr error
		for _, name := range names {
			src := filepath.Join(srcDir, filepath.FromSlash(name))
			dst := filepath.Join(dstDir, filepath.FromSlash(name))
			if err := m.relocator.Relocate(src, dst); err != nil {
				moveErr = fmt.Errorf("moving %s: %w", name, err)
				break
			}
		}
		if moveErr != nil {
			report.Failed = append(report.Failed, ItemFailure{LocalName: rec.LocalName, Err: moveErr})
			m.fail(op, moveErr)
			continue
		}

		rec.InstalledPath = to
		report.Moved = append(report.Moved, rec.LocalName)
		op.Status = domain.StatusOK
		m.record(op)
	}

	if err := m.profiles.SetDirectory(profile.Name, to); err != nil {
		if saveErr := m.save(); saveErr != nil {
			m.logger.Printf("migrate: %v", saveErr)
		}
		m.logger.Printf("migrate: %s: %d record(s) now in %s but the profile still points at %s: %v",
			profile.Name, len(report.Moved)+len(report.Skipped), to, from, err)
		return report, fmt.Errorf("rebinding profile %s: %w (moved records point at %s while the profile still points at %s; run the move again to finish)",
			profile.Name, err, to, from)
	}
	m.logger.Printf("migrate: %s moved %d, skipped %d, failed %d (%s -> %s)",
		profile.Name, len(report.Moved), len(report.Skipped), len(report.Failed), from, to)

	if err := m.save(); err != nil {
		return report, err
	}
	return report, nil
}
