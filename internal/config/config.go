package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDownloadFolder is the vault prefix assets are downloaded into.
const DefaultDownloadFolder = "moulinette"

// Config holds application configuration, persisted as config.json under the
// base dir (~/.mill).
type Config struct {
	// SessionID is the opaque 26-character cloud session identifier.
	// Empty means anonymous/demo access.
	SessionID string `json:"session_id,omitempty"`

	// DownloadFolder is the vault-relative directory assets are written to.
	DownloadFolder string `json:"download_folder,omitempty"`

	// ServerURL overrides the catalog service base URL (mainly for testing
	// against a local server).
	ServerURL string `json:"server_url,omitempty"`

	// VaultDir is the root of the local vault files are materialized in.
	// Empty means the current working directory.
	VaultDir string `json:"vault_dir,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DownloadFolder: DefaultDownloadFolder,
	}
}

// Prefix returns the download folder as a path prefix ("moulinette/").
func (c *Config) Prefix() string {
	folder := c.DownloadFolder
	if folder == "" {
		folder = DefaultDownloadFolder
	}
	return strings.TrimSuffix(folder, "/") + "/"
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mill.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Save writes the configuration to baseDir/config.json with restricted
// permissions (the session id is a credential).
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, "config.json"), append(data, '\n'), 0600)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-empty, else base.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SessionID = overlay.SessionID
	if result.SessionID == "" {
		result.SessionID = base.SessionID
	}

	result.DownloadFolder = overlay.DownloadFolder
	if result.DownloadFolder == "" {
		result.DownloadFolder = base.DownloadFolder
	}

	result.ServerURL = overlay.ServerURL
	if result.ServerURL == "" {
		result.ServerURL = base.ServerURL
	}

	result.VaultDir = overlay.VaultDir
	if result.VaultDir == "" {
		result.VaultDir = base.VaultDir
	}

	return result
}
