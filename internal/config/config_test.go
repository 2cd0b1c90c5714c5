package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DownloadFolder != DefaultDownloadFolder {
		t.Fatalf("DownloadFolder = %q, want %q", cfg.DownloadFolder, DefaultDownloadFolder)
	}
	if cfg.SessionID != "" {
		t.Errorf("SessionID = %q, want empty (anonymous)", cfg.SessionID)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	content := `{"session_id":"01HV3ZQ4X5Y6Z7A8B9C0D1E2F3","download_folder":"assets"}`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionID != "01HV3ZQ4X5Y6Z7A8B9C0D1E2F3" {
		t.Fatalf("SessionID = %q", cfg.SessionID)
	}
	if cfg.DownloadFolder != "assets" {
		t.Fatalf("DownloadFolder = %q, want assets", cfg.DownloadFolder)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatal("Load() should fail for invalid JSON")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.SessionID = "01HV3ZQ4X5Y6Z7A8B9C0D1E2F3"
	cfg.ServerURL = "http://127.0.0.1:5000"

	if err := Save(tmpDir, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SessionID != cfg.SessionID {
		t.Errorf("SessionID = %q, want %q", loaded.SessionID, cfg.SessionID)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
	if loaded.DownloadFolder != DefaultDownloadFolder {
		t.Errorf("DownloadFolder = %q, want default", loaded.DownloadFolder)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"", "moulinette/"},
		{"moulinette", "moulinette/"},
		{"assets", "assets/"},
		{"assets/", "assets/"},
	}
	for _, tt := range tests {
		cfg := &Config{DownloadFolder: tt.folder}
		if got := cfg.Prefix(); got != tt.want {
			t.Errorf("Prefix(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{SessionID: "01HV3ZQ4X5Y6Z7A8B9C0D1E2F3"}

	merged := Merge(base, overlay)
	if merged.SessionID != overlay.SessionID {
		t.Errorf("SessionID = %q, overlay should win", merged.SessionID)
	}
	if merged.DownloadFolder != DefaultDownloadFolder {
		t.Errorf("DownloadFolder = %q, base should fill empty overlay", merged.DownloadFolder)
	}
}
