package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"modman/internal/domain"
	"modman/internal/relocate"
	"modman/internal/source"

	"github.com/google/uuid"
)

// Fetcher downloads a remote file to a local path
type Fetcher interface {
	Download(ctx context.Context, url, destPath string, progressFn DownloadProgressFunc) (*DownloadResult, error)
}

// ArchiveExtractor unpacks downloaded archives
type ArchiveExtractor interface {
	Extract(archivePath, destDir string, progressFn func(float64)) ([]string, error)
	CanExtract(filename string) bool
}

// ModStore persists the mod database
type ModStore interface {
	Load() map[string]*domain.ModRecord
	Save(mods map[string]*domain.ModRecord) error
}

// ProfileDirectory looks up profiles and rebinds their directory
type ProfileDirectory interface {
	Get(name string) (*domain.Profile, error)
	SetDirectory(name, dir string) error
	Rename(oldName, newName string) error
}

// Journal records lifecycle operations
type Journal interface {
	RecordOperation(op *domain.Operation) error
}

// ManagerConfig holds the collaborators of a Manager.
// Journal, HookRunner and Logger are optional.
type ManagerConfig struct {
	Resolver   source.Resolver
	Fetcher    Fetcher
	Extractor  ArchiveExtractor
	Relocator  relocate.Relocator
	Store      ModStore
	Profiles   ProfileDirectory
	Journal    Journal
	Hooks      domain.ModHooks
	HookRunner *HookRunner
	MatchMode  domain.MatchMode
	Logger     *log.Logger
}

// Manager owns the mod database and every file it tracks. Each public method
// holds one mutex for its whole duration, so operations never interleave.
type Manager struct {
	mu sync.Mutex

	resolver   source.Resolver
	fetcher    Fetcher
	extractor  ArchiveExtractor
	relocator  relocate.Relocator
	store      ModStore
	profiles   ProfileDirectory
	journal    Journal
	hooks      domain.ModHooks
	hookRunner *HookRunner
	match      matcher
	logger     *log.Logger

	now      func() time.Time
	newRunID func() string

	mods map[string]*domain.ModRecord
}

// NewManager creates a Manager and loads the mod database from cfg.Store
func NewManager(cfg ManagerConfig) (*Manager, error) {
	switch {
	case cfg.Resolver == nil:
		return nil, errors.New("manager: resolver is required")
	case cfg.Fetcher == nil:
		return nil, errors.New("manager: fetcher is required")
	case cfg.Extractor == nil:
		return nil, errors.New("manager: extractor is required")
	case cfg.Relocator == nil:
		return nil, errors.New("manager: relocator is required")
	case cfg.Store == nil:
		return nil, errors.New("manager: mod store is required")
	case cfg.Profiles == nil:
		return nil, errors.New("manager: profile store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	m := &Manager{
		resolver:   cfg.Resolver,
		fetcher:    cfg.Fetcher,
		extractor:  cfg.Extractor,
		relocator:  cfg.Relocator,
		store:      cfg.Store,
		profiles:   cfg.Profiles,
		journal:    cfg.Journal,
		hooks:      cfg.Hooks,
		hookRunner: cfg.HookRunner,
		match:      matcher{mode: cfg.MatchMode, logger: logger},
		logger:     logger,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	m.mods = m.store.Load()
	if m.mods == nil {
		m.mods = make(map[string]*domain.ModRecord)
	}
	return m, nil
}

// InstallResult describes a completed install
type InstallResult struct {
	RunID       string
	ArchiveName string
	Records     []domain.ModRecord
	Bytes       int64
}

// ItemFailure is one record a batch operation could not process
type ItemFailure struct {
	LocalName string
	Err       error
}

// DeleteReport lists what Delete did with each requested name
type DeleteReport struct {
	RunID   string
	Deleted []string
	Skipped []string // Unknown names and records owned by another profile
	Failed  []ItemFailure
}

// Install downloads the bundle behind sourceURL into the profile directory,
// unpacks it and registers every extracted file as an enabled record.
//
// The database is saved even when only part of the work committed. A save
// failure is returned as domain.ErrSaveFailed together with the result.
func (m *Manager) Install(ctx context.Context, profileName, sourceURL string, onProgress domain.ProgressFunc) (*InstallResult, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, fmt.Errorf("%w: source URL is required", domain.ErrInvalidRequest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.profile(profileName)
	if err != nil {
		return nil, err
	}

	runID := m.newRunID()
	op := domain.Operation{RunID: runID, Kind: domain.OpInstall, Profile: profile.Name, ModName: sourceURL}
	hc := HookContext{
		Profile:    profile.Name,
		ProfileDir: profile.Directory,
		SourceURL:  sourceURL,
		HookName:   "install.before_each",
	}

	if err := m.runHook(ctx, m.hooks.Install.BeforeEach, hc); err != nil {
		m.fail(op, err)
		return nil, err
	}

	sl := newSlot(&progressSink{fn: onProgress}, sourceURL, 1, 1)
	sl.report(domain.PhaseResolve, 0)
	rf, err := m.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		m.fail(op, err)
		return nil, err
	}

	archivePath, size, err := m.download(ctx, profile.Directory, rf, sl)
	if err != nil {
		m.fail(op, err)
		return nil, err
	}
	op.Bytes = size

	names, err := m.unpack(archivePath, profile.Directory, sl)
	if err != nil {
		m.fail(op, err)
		return nil, err
	}

	result := &InstallResult{RunID: runID, ArchiveName: filepath.Base(archivePath), Bytes: size}
	for _, name := range names {
		rec := m.register(profile, name, result.ArchiveName, sourceURL)
		result.Records = append(result.Records, *rec)
	}

	op.ModName = result.ArchiveName
	op.Status = domain.StatusOK
	op.Detail = fmt.Sprintf("%d file(s)", len(names))
	m.record(op)

	hc.ModName = result.ArchiveName
	hc.HookName = "install.after_each"
	m.afterHook(ctx, m.hooks.Install.AfterEach, hc)

	sl.report(domain.PhaseDone, 100)
	if err := m.save(); err != nil {
		return result, err
	}
	return result, nil
}

// SetEnabled moves the files of a record between the profile directory and
// its .disabled subdirectory and updates the record's flag.
//
// When no file is found where the current state says it should be, the flag
// is left unchanged and domain.ErrModFileMissing is returned, unless the file
// already sits at the destination, in which case only the flag is repaired.
func (m *Manager) SetEnabled(localName string, enabled bool) (*domain.ModRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.mods[localName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMod, localName)
	}

	kind := domain.OpDisable
	srcDir, dstDir := rec.InstalledPath, domain.DisabledDir(rec.InstalledPath)
	if enabled {
		kind = domain.OpEnable
		srcDir, dstDir = dstDir, srcDir
	}
	op := domain.Operation{RunID: m.newRunID(), Kind: kind, Profile: rec.Profile, ModName: localName}

	names := m.match.find(srcDir, rec.LocalName)
	if len(names) == 0 {
		if len(m.match.find(dstDir, rec.LocalName)) == 0 {
			err := fmt.Errorf("%w: %s is in neither %s nor %s", domain.ErrModFileMissing, localName, srcDir, dstDir)
			m.fail(op, err)
			return nil, err
		}
		if rec.Enabled != enabled {
			m.logger.Printf("toggle: %s already in %s, repairing flag", localName, dstDir)
		}
	}

	for i, name := range names {
		src := filepath.Join(srcDir, filepath.FromSlash(name))
		dst := filepath.Join(dstDir, filepath.FromSlash(name))
		if err := m.relocator.Relocate(src, dst); err != nil {
			err = fmt.Errorf("moving %s: %w", name, err)
			m.moveBack(names[:i], srcDir, dstDir)
			m.fail(op, err)
			return nil, err
		}
	}

	rec.Enabled = enabled
	op.Status = domain.StatusOK
	m.record(op)

	out := *rec
	if err := m.save(); err != nil {
		return &out, err
	}
	return &out, nil
}

// moveBack returns files already moved from srcDir to dstDir, so a toggle
// that fails halfway leaves every file where the unchanged flag says.
func (m *Manager) moveBack(names []string, srcDir, dstDir string) {
	for _, name := range names {
		src := filepath.Join(srcDir, filepath.FromSlash(name))
		dst := filepath.Join(dstDir, filepath.FromSlash(name))
		if err := m.relocator.Relocate(dst, src); err != nil {
			m.logger.Printf("toggle: restoring %s to %s: %v", name, srcDir, err)
		}
	}
}

// Delete removes the named records of profileName together with their files
// in both the active and the disabled directory. Names that are unknown or
// belong to another profile are skipped.
func (m *Manager) Delete(profileName string, localNames ...string) (*DeleteReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &DeleteReport{RunID: m.newRunID()}
	for _, name := range localNames {
		rec, ok := m.mods[name]
		if !ok || rec.Profile != profileName {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		op := domain.Operation{RunID: report.RunID, Kind: domain.OpDelete, Profile: profileName, ModName: name}
		if err := m.removeFiles(rec, ""); err != nil {
			report.Failed = append(report.Failed, ItemFailure{LocalName: name, Err: err})
			m.fail(op, err)
			continue
		}

		delete(m.mods, name)
		report.Deleted = append(report.Deleted, name)
		op.Status = domain.StatusOK
		m.record(op)
	}

	if len(report.Deleted) == 0 {
		return report, nil
	}
	if err := m.save(); err != nil {
		return report, err
	}
	return report, nil
}

// Mods returns copies of the records of profileName sorted by LocalName.
// An empty profileName returns every record.
func (m *Manager) Mods(profileName string) []domain.ModRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.sorted(func(r *domain.ModRecord) bool {
		return profileName == "" || r.Profile == profileName
	})
	out := make([]domain.ModRecord, len(recs))
	for i, r := range recs {
		out[i] = *r
	}
	return out
}

// Mod returns a copy of one record
func (m *Manager) Mod(localName string) (*domain.ModRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.mods[localName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMod, localName)
	}
	out := *rec
	return &out, nil
}

// Reload replaces the in-memory database with the persisted one
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mods = m.store.Load()
	if m.mods == nil {
		m.mods = make(map[string]*domain.ModRecord)
	}
}

func (m *Manager) profile(name string) (*domain.Profile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: profile name is required", domain.ErrInvalidRequest)
	}
	p, err := m.profiles.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return p, nil
}

// sorted returns the records accepted by keep, ordered by LocalName
func (m *Manager) sorted(keep func(*domain.ModRecord) bool) []*domain.ModRecord {
	var recs []*domain.ModRecord
	for _, r := range m.mods {
		if keep(r) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].LocalName < recs[j].LocalName })
	return recs
}

// download fetches rf into dir and returns the local path and size
func (m *Manager) download(ctx context.Context, dir string, rf *domain.ResolvedFile, sl slot) (string, int64, error) {
	name := downloadName(rf)
	if name == "" {
		return "", 0, fmt.Errorf("%w: resolved file has no name", domain.ErrFileNotAvailable)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating profile directory: %w", err)
	}

	archivePath := filepath.Join(dir, name)
	sl.report(domain.PhaseDownload, 0)
	result, err := m.fetcher.Download(ctx, rf.DownloadURL, archivePath, func(p DownloadProgress) {
		pct := p.Percentage
		if p.TotalBytes <= 0 && rf.Size > 0 {
			pct = float64(p.Downloaded) / float64(rf.Size) * 100
		}
		sl.report(domain.PhaseDownload, pct)
	})
	if err != nil {
		return "", 0, err
	}
	sl.report(domain.PhaseDownload, 100)

	var size int64
	if result != nil {
		size = result.Size
	}
	return archivePath, size, nil
}

// downloadName picks the local file name of a resolved file, falling back to
// the last segment of the download URL.
func downloadName(rf *domain.ResolvedFile) string {
	name := path.Base(strings.ReplaceAll(rf.FileName, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
		if u, err := url.Parse(rf.DownloadURL); err == nil {
			name = path.Base(u.Path)
		}
	}
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}

// unpack extracts archivePath into dir and removes the archive on success.
// A download that is not an archive is itself the mod file. An archive is
// kept when extraction fails or yields nothing.
func (m *Manager) unpack(archivePath, dir string, sl slot) ([]string, error) {
	name := filepath.Base(archivePath)
	if !m.extractor.CanExtract(name) {
		sl.report(domain.PhaseExtract, 100)
		return []string{name}, nil
	}

	names, err := m.extractor.Extract(archivePath, dir, func(pct float64) {
		sl.report(domain.PhaseExtract, pct)
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyArchive, name)
	}

	if !slices.Contains(names, name) {
		if err := os.Remove(archivePath); err != nil {
			m.logger.Printf("install: removing archive %s: %v", archivePath, err)
		}
	}
	sl.report(domain.PhaseExtract, 100)
	return names, nil
}

// register records a freshly written file of profile as enabled. A previous
// record for the same file keeps its install time, and a stale disabled copy
// of it is removed so the new file is the only one.
func (m *Manager) register(profile *domain.Profile, name, archiveName, sourceURL string) *domain.ModRecord {
	now := m.now()
	rec := &domain.ModRecord{
		LocalName:     name,
		DisplayName:   DisplayName(name),
		ArchiveName:   archiveName,
		SourceURL:     sourceURL,
		Profile:       profile.Name,
		InstalledPath: profile.Directory,
		Enabled:       true,
		InstalledAt:   now,
		UpdatedAt:     now,
	}

	if prev, ok := m.mods[name]; ok {
		if prev.Profile == profile.Name && !prev.InstalledAt.IsZero() {
			rec.InstalledAt = prev.InstalledAt
		}
		if !prev.Enabled {
			if err := os.Remove(prev.DisabledPath()); err != nil && !os.IsNotExist(err) {
				m.logger.Printf("install: removing stale disabled copy of %s: %v", name, err)
			}
		}
	}

	m.mods[name] = rec
	return rec
}

// removeFiles deletes the files matching rec in both the active and the
// disabled directory of its installed path, except keep. Missing files are
// ignored.
func (m *Manager) removeFiles(rec *domain.ModRecord, keep string) error {
	var errs []error
	for _, dir := range []string{rec.InstalledPath, domain.DisabledDir(rec.InstalledPath)} {
		for _, name := range m.match.find(dir, rec.LocalName) {
			p := filepath.Join(dir, filepath.FromSlash(name))
			if keep != "" && filepath.Clean(p) == filepath.Clean(keep) {
				continue
			}
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("removing %s: %w", p, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) save() error {
	if err := m.store.Save(m.mods); err != nil {
		m.logger.Printf("saving mod database: %v", err)
		return fmt.Errorf("%w: %w", domain.ErrSaveFailed, err)
	}
	return nil
}

// record writes op to the journal, if there is one
func (m *Manager) record(op domain.Operation) {
	if m.journal == nil {
		return
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = m.now()
	}
	if err := m.journal.RecordOperation(&op); err != nil {
		m.logger.Printf("journal: %v", err)
	}
}

func (m *Manager) fail(op domain.Operation, err error) {
	m.logger.Printf("%s %s: %v", op.Kind, op.ModName, err)
	op.Status = domain.StatusFailed
	op.ErrorKind = domain.ErrorKind(err)
	op.Detail = err.Error()
	m.record(op)
}

// runHook runs script when both it and a hook runner are configured
func (m *Manager) runHook(ctx context.Context, script string, hc HookContext) error {
	if script == "" || m.hookRunner == nil {
		return nil
	}
	res, err := m.hookRunner.Run(ctx, script, hc)
	if err != nil {
		if res != nil && res.Stderr != "" {
			m.logger.Printf("hook %s stderr: %s", hc.HookName, strings.TrimSpace(res.Stderr))
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrHookFailed, hc.HookName, err)
	}
	return nil
}

// afterHook runs an after_* hook. Its failure is logged only.
func (m *Manager) afterHook(ctx context.Context, script string, hc HookContext) {
	if err := m.runHook(ctx, script, hc); err != nil {
		m.logger.Printf("%v", err)
	}
}
