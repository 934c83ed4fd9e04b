package core_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"modman/internal/core"
	"modman/internal/domain"
	"modman/internal/relocate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	files map[string]*domain.ResolvedFile
	errs  map[string]error
	calls []string
}

func (r *fakeResolver) Resolve(_ context.Context, rawURL string) (*domain.ResolvedFile, error) {
	r.calls = append(r.calls, rawURL)
	if err, ok := r.errs[rawURL]; ok {
		return nil, err
	}
	rf, ok := r.files[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnresolvableSource, rawURL)
	}
	cp := *rf
	return &cp, nil
}

type fakeFetcher struct {
	payloads map[string][]byte
	errs     map[string]error
	calls    int
}

func (f *fakeFetcher) Download(_ context.Context, url, destPath string, progressFn core.DownloadProgressFunc) (*core.DownloadResult, error) {
	f.calls++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	data, ok := f.payloads[url]
	if !ok {
		return nil, fmt.Errorf("%w: no payload for %s", domain.ErrDownloadFailed, url)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return nil, err
	}

	total := int64(len(data))
	if progressFn != nil {
		progressFn(core.DownloadProgress{TotalBytes: total, Downloaded: total / 2, Percentage: 50})
		progressFn(core.DownloadProgress{TotalBytes: total, Downloaded: total, Percentage: 100})
	}
	return &core.DownloadResult{Path: destPath, Size: total}, nil
}

type memStore struct {
	initial map[string]*domain.ModRecord
	saved   map[string]*domain.ModRecord
	saves   int
	err     error
}

func cloneRecords(in map[string]*domain.ModRecord) map[string]*domain.ModRecord {
	out := make(map[string]*domain.ModRecord, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *memStore) Load() map[string]*domain.ModRecord {
	if s.saved != nil {
		return cloneRecords(s.saved)
	}
	return cloneRecords(s.initial)
}

func (s *memStore) Save(mods map[string]*domain.ModRecord) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.saved = cloneRecords(mods)
	return nil
}

type fakeProfiles struct {
	profiles map[string]*domain.Profile
	setErr   error
}

func (p *fakeProfiles) Get(name string) (*domain.Profile, error) {
	prof, ok := p.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	cp := *prof
	return &cp, nil
}

func (p *fakeProfiles) SetDirectory(name, dir string) error {
	if p.setErr != nil {
		return p.setErr
	}
	prof, ok := p.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	prof.Directory = dir
	return nil
}

func (p *fakeProfiles) Rename(oldName, newName string) error {
	prof, ok := p.profiles[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, oldName)
	}
	if _, exists := p.profiles[newName]; exists {
		return fmt.Errorf("%w: %s", domain.ErrProfileExists, newName)
	}
	delete(p.profiles, oldName)
	prof.Name = newName
	p.profiles[newName] = prof
	return nil
}

type memJournal struct {
	ops []domain.Operation
}

func (j *memJournal) RecordOperation(op *domain.Operation) error {
	j.ops = append(j.ops, *op)
	return nil
}

// failingRelocator fails every move whose source path contains failOn.
type failingRelocator struct {
	inner  relocate.Relocator
	failOn string
}

func (r *failingRelocator) Relocate(src, dst string) error {
	if strings.Contains(src, r.failOn) {
		return fmt.Errorf("%w: simulated permission error", domain.ErrRelocationFailed)
	}
	return r.inner.Relocate(src, dst)
}

// gateRelocator parks the first move until release is closed, signalling
// entered once it is parked.
type gateRelocator struct {
	inner   relocate.Relocator
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGateRelocator() *gateRelocator {
	return &gateRelocator{
		inner:   relocate.New(nil),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (r *gateRelocator) Relocate(src, dst string) error {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.inner.Relocate(src, dst)
}

type harness struct {
	modsDir   string
	resolver  *fakeResolver
	fetcher   *fakeFetcher
	store     *memStore
	profiles  *fakeProfiles
	journal   *memJournal
	relocator relocate.Relocator
	matchMode domain.MatchMode
	hooks     domain.ModHooks
	logs      bytes.Buffer
	clock     time.Time
	mgr       *core.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	modsDir := filepath.Join(t.TempDir(), "mods")
	return &harness{
		modsDir:  modsDir,
		resolver: &fakeResolver{files: map[string]*domain.ResolvedFile{}, errs: map[string]error{}},
		fetcher:  &fakeFetcher{payloads: map[string][]byte{}, errs: map[string]error{}},
		store:    &memStore{initial: map[string]*domain.ModRecord{}},
		profiles: &fakeProfiles{profiles: map[string]*domain.Profile{
			domain.DefaultProfileName: {Name: domain.DefaultProfileName, Directory: modsDir, AutoExtract: true},
		}},
		journal:   &memJournal{},
		relocator: relocate.New(nil),
		clock:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

// build creates the Manager; call it after seeding the store.
func (h *harness) build(t *testing.T) *core.Manager {
	t.Helper()
	cfg := core.ManagerConfig{
		Resolver:  h.resolver,
		Fetcher:   h.fetcher,
		Extractor: core.NewExtractor(),
		Relocator: h.relocator,
		Store:     h.store,
		Profiles:  h.profiles,
		Journal:   h.journal,
		Hooks:     h.hooks,
		MatchMode: h.matchMode,
		Logger:    log.New(&h.logs, "", 0),
	}
	if !h.hooks.IsEmpty() {
		cfg.HookRunner = core.NewHookRunner(10 * time.Second)
	}
	mgr, err := core.NewManager(cfg)
	require.NoError(t, err)
	mgr.SetNow(func() time.Time { return h.clock })
	h.mgr = mgr
	return mgr
}

// serve makes url resolve to archive, whose download yields payload.
func (h *harness) serve(url, archive string, payload []byte) {
	cdn := "https://cdn.test/" + archive
	h.resolver.files[url] = &domain.ResolvedFile{DownloadURL: cdn, FileName: archive, Size: int64(len(payload))}
	h.fetcher.payloads[cdn] = payload
}

func (h *harness) install(t *testing.T, url string) *core.InstallResult {
	t.Helper()
	res, err := h.mgr.Install(context.Background(), domain.DefaultProfileName, url, nil)
	require.NoError(t, err)
	return res
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		if !strings.HasSuffix(name, "/") {
			_, err = f.Write([]byte(files[name]))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// assertCoherent checks that every record's file sits where its flag says
// and nowhere else.
func assertCoherent(t *testing.T, mgr *core.Manager) {
	t.Helper()
	for _, rec := range mgr.Mods("") {
		active, disabled := exists(rec.ActivePath()), exists(rec.DisabledPath())
		if rec.Enabled {
			assert.True(t, active, "%s should be active", rec.LocalName)
			assert.False(t, disabled, "%s should not be in .disabled", rec.LocalName)
		} else {
			assert.False(t, active, "%s should not be active", rec.LocalName)
			assert.True(t, disabled, "%s should be in .disabled", rec.LocalName)
		}
	}
}
