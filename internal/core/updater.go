package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"modman/internal/domain"
)

// UpdateReport summarizes a bulk update
type UpdateReport struct {
	RunID     string
	Total     int
	Succeeded []string
	Failed    []ItemFailure
}

// Update redownloads and reinstalls every record of profileName, one at a
// time in LocalName order. A failing record is reported and the batch moves
// on. Each refreshed file keeps the enabled state it had before the batch.
// The database is saved once at the end.
//
// Progress gives every record an equal share of the bar: half for its
// download and half for its extraction.
func (m *Manager) Update(ctx context.Context, profileName string, onProgress domain.ProgressFunc) (*UpdateReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.profile(profileName)
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{RunID: m.newRunID()}
	sink := &progressSink{fn: onProgress}

	targets := m.sorted(func(r *domain.ModRecord) bool { return r.Profile == profile.Name })
	report.Total = len(targets)
	if len(targets) == 0 {
		sink.emit(domain.Progress{Phase: domain.PhaseDone, Percent: 100})
		return report, nil
	}

	wasEnabled := make(map[string]bool, len(targets))
	for _, r := range targets {
		wasEnabled[r.LocalName] = r.Enabled
	}

	batchHook := HookContext{Profile: profile.Name, ProfileDir: profile.Directory, HookName: "update.before_all"}
	if err := m.runHook(ctx, m.hooks.Update.BeforeAll, batchHook); err != nil {
		return report, err
	}

	refreshed := make(map[string]bool)
	for i, rec := range targets {
		sl := newSlot(sink, rec.LocalName, i+1, len(targets))

		// Files unpacked from an archive already refreshed in this batch.
		if refreshed[rec.LocalName] {
			report.Succeeded = append(report.Succeeded, rec.LocalName)
			sl.report(domain.PhaseDone, 100)
			continue
		}

		op := domain.Operation{RunID: report.RunID, Kind: domain.OpUpdate, Profile: profile.Name, ModName: rec.LocalName}
		names, size, err := m.updateOne(ctx, profile, rec, wasEnabled, sl)
		for _, n := range names {
			refreshed[n] = true
		}
		op.Bytes = size

		if err != nil {
			report.Failed = append(report.Failed, ItemFailure{LocalName: rec.LocalName, Err: err})
			m.fail(op, err)
		} else {
			report.Succeeded = append(report.Succeeded, rec.LocalName)
			op.Status = domain.StatusOK
			m.record(op)
		}
		sl.report(domain.PhaseDone, 100)
	}

	batchHook.HookName = "update.after_all"
	m.afterHook(ctx, m.hooks.Update.AfterAll, batchHook)

	sink.emit(domain.Progress{Phase: domain.PhaseDone, Index: len(targets), Total: len(targets), Percent: 100})
	if err := m.save(); err != nil {
		return report, err
	}
	return report, nil
}

// updateOne refreshes one record and returns the names it wrote. The source
// is resolved and downloaded before the old files are removed, so a network
// failure leaves the installed files untouched.
func (m *Manager) updateOne(ctx context.Context, profile *domain.Profile, rec *domain.ModRecord, wasEnabled map[string]bool, sl slot) ([]string, int64, error) {
	if strings.TrimSpace(rec.SourceURL) == "" {
		return nil, 0, fmt.Errorf("%w: %s has no source URL", domain.ErrUnresolvableSource, rec.LocalName)
	}

	hc := HookContext{
		Profile:    profile.Name,
		ProfileDir: profile.Directory,
		ModName:    rec.LocalName,
		SourceURL:  rec.SourceURL,
		HookName:   "update.before_each",
	}
	if err := m.runHook(ctx, m.hooks.Update.BeforeEach, hc); err != nil {
		return nil, 0, err
	}

	sl.report(domain.PhaseResolve, 0)
	rf, err := m.resolver.Resolve(ctx, rec.SourceURL)
	if err != nil {
		return nil, 0, err
	}

	archivePath, size, err := m.download(ctx, profile.Directory, rf, sl)
	if err != nil {
		return nil, 0, err
	}

	if err := m.removeFiles(rec, archivePath); err != nil {
		m.logger.Printf("update %s: %v", rec.LocalName, err)
	}

	names, err := m.unpack(archivePath, profile.Directory, sl)
	if err != nil {
		m.logger.Printf("update %s: old files removed but %s could not be unpacked; record has no file on disk",
			rec.LocalName, filepath.Base(archivePath))
		return nil, size, fmt.Errorf("%w (%w: old files of %s were already removed)", err, domain.ErrModFileMissing, rec.LocalName)
	}

	archiveName := filepath.Base(archivePath)
	var errs []error
	for _, name := range names {
		fresh := m.register(profile, name, archiveName, rec.SourceURL)

		enabled, known := wasEnabled[name]
		if !known {
			enabled = wasEnabled[rec.LocalName]
		}
		if enabled {
			continue
		}
		if err := m.relocator.Relocate(fresh.ActivePath(), fresh.DisabledPath()); err != nil {
			errs = append(errs, fmt.Errorf("re-disabling %s: %w", name, err))
			continue
		}
		fresh.Enabled = false
	}

	hc.HookName = "update.after_each"
	m.afterHook(ctx, m.hooks.Update.AfterEach, hc)

	return names, size, errors.Join(errs...)
}
