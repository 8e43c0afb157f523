// Package identity provides the host and session identity stamped on every
// chipprobe run.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/google/uuid"
)

// DefaultVersion is the fallback version string when no metadata is found.
const DefaultVersion = "0.1.0-dev"

// Info holds the identity of one run.
type Info struct {
	Hostname string
	Version  string
	Session  string // random per run, ties log lines and bus events together
}

// New collects host identity and starts a new session.
func New(configDir string) Info {
	return Info{
		Hostname: GetHostname(),
		Version:  GetVersionFromDir(configDir),
		Session:  NewSession(),
	}
}

// NewSession returns a fresh session ID.
func NewSession() string {
	return uuid.NewString()
}

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "chipprobe"
	}
	return h
}

// GetVersionFromDir reads the version from metadata.json in dir. It falls back
// to the module build info and then to DefaultVersion.
func GetVersionFromDir(dir string) string {
	if dir != "" {
		if v := versionFromMetadata(filepath.Join(dir, "metadata.json")); v != "" {
			return v
		}
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return DefaultVersion
}

func versionFromMetadata(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	if v, ok := meta["version"].(string); ok {
		return v
	}
	return ""
}
