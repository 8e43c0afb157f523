package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the config file name inside the config directory.
const FileName = "chipprobe.json"

// JSONStore is an atomic JSON file store.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a new JSON store in the given config directory.
func NewJSONStore(configDir string) *JSONStore {
	return &JSONStore{
		path: filepath.Join(configDir, FileName),
	}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// errCorrupt marks a config file that is not valid JSON.
var errCorrupt = errors.New("corrupt JSON")

// Load reads the config from disk. Returns Default on ENOENT or parse errors;
// a file that parses but fails validation is an error.
func (s *JSONStore) Load() (*Config, error) {
	cfg, err := s.loadStrict()
	switch {
	case errors.Is(err, os.ErrNotExist):
		def := Default()
		return &def, nil
	case errors.Is(err, errCorrupt):
		slog.Warn("config: corrupt JSON config, using defaults", "path", s.path, "err", err)
		def := Default()
		return &def, nil
	}
	return cfg, err
}

// loadStrict reads and validates the file with no fallback: a missing or
// unparsable file is an error. Keys absent from the file keep their default;
// ADC scaling follows the converter type.
func (s *JSONStore) loadStrict() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.ADC = ADCConfig{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w: %v", s.path, errCorrupt, err)
	}

	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", s.path, err)
	}
	return &cfg, nil
}

// Save validates cfg and writes it to disk atomically.
func (s *JSONStore) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAtomic(cfg)
}

func (s *JSONStore) writeAtomic(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	// Write to temp file, then rename (atomic on Linux)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

var _ Store = (*JSONStore)(nil)
