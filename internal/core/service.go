package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"modman/internal/domain"
	"modman/internal/logx"
	"modman/internal/relocate"
	"modman/internal/source"
	"modman/internal/source/curseforge"
	"modman/internal/source/modio"
	"modman/internal/source/nexusmods"
	"modman/internal/storage/config"
	"modman/internal/storage/db"
	"modman/internal/storage/moddb"
)

// APIKeyEnv maps source IDs to the environment variable that overrides the
// stored API key
var APIKeyEnv = map[string]string{
	"modio":      "MODIO_API_KEY",
	"nexusmods":  "NEXUSMODS_API_KEY",
	"curseforge": "CURSEFORGE_API_KEY",
}

// SourceIDs lists the built-in sources in resolution order
var SourceIDs = []string{"modio", "nexusmods", "curseforge"}

var _ ProfileDirectory = (*config.ProfileStore)(nil)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir  string       // Directory for config.yaml and profiles.yaml
	DataDir    string       // Directory for the mod database, state db and default mods dir
	Logger     *log.Logger  // Optional; nil discards
	HTTPClient *http.Client // Optional; nil uses http.DefaultClient
	Getenv     func(string) string
}

// Service wires configuration, storage and sources into a Manager
type Service struct {
	config   *config.Config
	db       *db.DB
	profiles *config.ProfileStore
	registry *source.Registry
	manager  *Manager
	logger   *log.Logger

	httpClient *http.Client
	getenv     func(string) string
	configDir  string
	dataDir    string
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	database, err := db.New(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	profiles, err := config.LoadProfiles(cfg.ConfigDir, filepath.Join(cfg.DataDir, "mods"))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logx.Discard()
	}
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	s := &Service{
		config:     appConfig,
		db:         database,
		profiles:   profiles,
		registry:   source.NewRegistry(),
		logger:     logger,
		httpClient: cfg.HTTPClient,
		getenv:     getenv,
		configDir:  cfg.ConfigDir,
		dataDir:    cfg.DataDir,
	}
	if err := s.registerSources(); err != nil {
		database.Close()
		return nil, err
	}

	downloader := NewDownloader(cfg.HTTPClient)
	downloader.SetMaxAttempts(appConfig.DownloadAttempts)

	var hookRunner *HookRunner
	if !appConfig.Hooks.IsEmpty() {
		hookRunner = NewHookRunner(DefaultHookTimeout)
	}

	s.manager, err = NewManager(ManagerConfig{
		Resolver:   s.registry,
		Fetcher:    downloader,
		Extractor:  NewExtractor(),
		Relocator:  relocate.New(logger),
		Store:      moddb.New(filepath.Join(cfg.DataDir, "moddb.json"), logger),
		Profiles:   profiles,
		Journal:    database,
		Hooks:      appConfig.Hooks,
		HookRunner: hookRunner,
		MatchMode:  appConfig.MatchMode,
		Logger:     logger,
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	return s, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Manager returns the mod lifecycle manager
func (s *Service) Manager() *Manager {
	return s.manager
}

// Profiles returns the profile store
func (s *Service) Profiles() *config.ProfileStore {
	return s.profiles
}

// Config returns the loaded application settings
func (s *Service) Config() *config.Config {
	return s.config
}

// DB returns the state database
func (s *Service) DB() *db.DB {
	return s.db
}

// Registry returns the source registry
func (s *Service) Registry() *source.Registry {
	return s.registry
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}

// DataDir returns the data directory
func (s *Service) DataDir() string {
	return s.dataDir
}

// CurrentProfile returns override when set, else the configured default
func (s *Service) CurrentProfile(override string) string {
	if override != "" {
		return override
	}
	return s.config.DefaultProfile
}

// SetDefaultProfile makes name the profile used when none is given
func (s *Service) SetDefaultProfile(name string) error {
	if _, err := s.profiles.Get(name); err != nil {
		return err
	}
	s.config.DefaultProfile = name
	return s.config.Save(s.configDir)
}

// APIKey returns the key for a source and where it came from: "env",
// "stored", or "" when none is configured
func (s *Service) APIKey(sourceID string) (key, origin string, err error) {
	if env, ok := APIKeyEnv[sourceID]; ok {
		if v := s.getenv(env); v != "" {
			return v, "env", nil
		}
	}
	stored, err := s.db.GetAPIKey(sourceID)
	if err != nil {
		return "", "", err
	}
	if stored == nil {
		return "", "", nil
	}
	return stored.APIKey, "stored", nil
}

// SaveAPIKey stores a key and rebuilds the matching source with it
func (s *Service) SaveAPIKey(sourceID, apiKey string) error {
	if _, ok := APIKeyEnv[sourceID]; !ok {
		return fmt.Errorf("%w: unknown source %q", domain.ErrInvalidRequest, sourceID)
	}
	if err := s.db.SaveAPIKey(sourceID, apiKey); err != nil {
		return err
	}
	return s.registerSources()
}

// DeleteAPIKey removes a stored key
func (s *Service) DeleteAPIKey(sourceID string) error {
	if err := s.db.DeleteAPIKey(sourceID); err != nil {
		return err
	}
	return s.registerSources()
}

// ValidateKey checks apiKey against the source's API without storing it
func (s *Service) ValidateKey(ctx context.Context, sourceID, apiKey string) error {
	src, err := s.newSource(sourceID, apiKey)
	if err != nil {
		return err
	}
	v, ok := src.(source.KeyValidator)
	if !ok {
		return fmt.Errorf("source %s cannot validate keys", sourceID)
	}
	return v.ValidateKey(ctx)
}

// History returns journal entries newest first
func (s *Service) History(f db.OperationFilter) ([]domain.Operation, error) {
	return s.db.ListOperations(f)
}

// Stats aggregates the journal for profile, or for all profiles when empty
func (s *Service) Stats(profile string) (*domain.OperationStats, error) {
	return s.db.OperationStats(profile)
}

func (s *Service) registerSources() error {
	var errs []error
	for _, id := range SourceIDs {
		key, _, err := s.APIKey(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s key: %w", id, err))
		}
		src, err := s.newSource(id, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.registry.Register(src)
	}
	return errors.Join(errs...)
}

func (s *Service) newSource(id, apiKey string) (source.Source, error) {
	switch id {
	case "modio":
		return modio.New(s.httpClient, apiKey), nil
	case "nexusmods":
		return nexusmods.New(s.httpClient, apiKey), nil
	case "curseforge":
		return curseforge.New(s.httpClient, apiKey), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidRequest, id)
	}
}
