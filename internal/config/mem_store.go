package config

import "sync"

// MemStore is an in-memory Store for tests that never writes to disk.
type MemStore struct {
	mu  sync.Mutex
	cfg *Config
}

// NewMemStore returns a new in-memory store with nil config (defaults to Default on Load).
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored config, or Default if none has been saved yet.
func (m *MemStore) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		def := Default()
		return &def, nil
	}
	cp := *m.cfg
	return &cp, nil
}

// Save validates and stores a copy of cfg.
func (m *MemStore) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.cfg = &cp
	return nil
}

// Path returns ":memory:" to indicate this is an in-memory store.
func (m *MemStore) Path() string { return ":memory:" }

// Ensure MemStore implements config.Store
var _ Store = (*MemStore)(nil)
