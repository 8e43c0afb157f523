// Package config handles loading and saving the chipprobe bench configuration.
package config

// Store is the interface for persisting the bench configuration.
type Store interface {
	// Load loads the current config. Returns Default if no file exists.
	Load() (*Config, error)

	// Save persists the config.
	Save(cfg *Config) error

	// Path returns the file path used by this store.
	Path() string
}
