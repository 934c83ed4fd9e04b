package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"modman/internal/domain"

	"gopkg.in/yaml.v3"
)

// ProfileConfig is the YAML representation of a profile
type ProfileConfig struct {
	Directory   string `yaml:"directory"`
	AutoExtract *bool  `yaml:"auto_extract,omitempty"`
}

// ProfilesFile is the top-level profiles.yaml structure
type ProfilesFile struct {
	Profiles map[string]ProfileConfig `yaml:"profiles"`
}

// ProfileStore keeps the profile mapping in profiles.yaml, persisting every
// change immediately. A "Default" profile is synthesized whenever the store
// would otherwise be empty.
type ProfileStore struct {
	mu         sync.Mutex
	path       string
	defaultDir string
	profiles   map[string]*domain.Profile
}

// LoadProfiles reads profiles.yaml from configDir. defaultDir is where a
// synthesized Default profile points.
func LoadProfiles(configDir, defaultDir string) (*ProfileStore, error) {
	s := &ProfileStore{
		path:       filepath.Join(configDir, "profiles.yaml"),
		defaultDir: defaultDir,
		profiles:   make(map[string]*domain.Profile),
	}

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading profiles.yaml: %w", err)
	}
	if err == nil {
		var pf ProfilesFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing profiles.yaml: %w", err)
		}
		for name, pc := range pf.Profiles {
			autoExtract := true
			if pc.AutoExtract != nil {
				autoExtract = *pc.AutoExtract
			}
			s.profiles[name] = &domain.Profile{
				Name:        name,
				Directory:   ExpandPath(pc.Directory),
				AutoExtract: autoExtract,
			}
		}
	}

	if len(s.profiles) == 0 {
		s.synthesizeDefault()
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns a copy of the named profile
func (s *ProfileStore) Get(name string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	cp := *p
	return &cp, nil
}

// List returns copies of all profiles sorted by name
func (s *ProfileStore) List() []*domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Create adds a new profile bound to dir
func (s *ProfileStore) Create(name, dir string) error {
	name = strings.TrimSpace(name)
	if name == "" || dir == "" {
		return fmt.Errorf("%w: profile name and directory are required", domain.ErrInvalidRequest)
	}
	abs, err := filepath.Abs(ExpandPath(dir))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrProfileExists, name)
	}
	s.profiles[name] = &domain.Profile{Name: name, Directory: abs, AutoExtract: true}
	if err := s.save(); err != nil {
		delete(s.profiles, name)
		return err
	}
	return nil
}

// Rename changes a profile's name. The Default profile cannot be renamed
// while it is the only profile.
func (s *ProfileStore) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: new profile name is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.profiles[newName]; exists {
		return fmt.Errorf("%w: %s", domain.ErrProfileExists, newName)
	}
	if s.isLastDefault(oldName) {
		return fmt.Errorf("%w: %s is the only profile", domain.ErrProtectedProfile, oldName)
	}

	delete(s.profiles, oldName)
	p.Name = newName
	s.profiles[newName] = p
	if err := s.save(); err != nil {
		delete(s.profiles, newName)
		p.Name = oldName
		s.profiles[oldName] = p
		return err
	}
	return nil
}

// Delete removes a profile. Removing the last profile synthesizes a fresh
// Default; the Default profile itself cannot be removed while it is the
// only one.
func (s *ProfileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	if s.isLastDefault(name) {
		return fmt.Errorf("%w: %s is the only profile", domain.ErrProtectedProfile, name)
	}

	delete(s.profiles, name)
	if len(s.profiles) == 0 {
		s.synthesizeDefault()
	}
	if err := s.save(); err != nil {
		delete(s.profiles, domain.DefaultProfileName)
		s.profiles[name] = p
		return err
	}
	return nil
}

// SetDirectory rebinds a profile to dir
func (s *ProfileStore) SetDirectory(name, dir string) error {
	abs, err := filepath.Abs(ExpandPath(dir))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	old := p.Directory
	p.Directory = abs
	if err := s.save(); err != nil {
		p.Directory = old
		return err
	}
	return nil
}

func (s *ProfileStore) isLastDefault(name string) bool {
	return name == domain.DefaultProfileName && len(s.profiles) == 1
}

func (s *ProfileStore) synthesizeDefault() {
	s.profiles[domain.DefaultProfileName] = &domain.Profile{
		Name:        domain.DefaultProfileName,
		Directory:   s.defaultDir,
		AutoExtract: true,
	}
}

func (s *ProfileStore) save() error {
	pf := ProfilesFile{Profiles: make(map[string]ProfileConfig, len(s.profiles))}
	for name, p := range s.profiles {
		autoExtract := p.AutoExtract
		pf.Profiles[name] = ProfileConfig{Directory: p.Directory, AutoExtract: &autoExtract}
	}

	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing profiles.yaml: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
