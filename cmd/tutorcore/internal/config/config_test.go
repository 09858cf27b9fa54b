package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Profile != "middle_school" {
		t.Errorf("profile = %q, want default", cfg.Profile)
	}
	if !cfg.FlagEnabled("voice_enabled") {
		t.Error("voice_enabled should default to true")
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
endpoint: wss://voice.example.com/session
token: sk-test
profile: high_school
capacity: 200
archive_dir: /tmp/tutorcore-archive
flags:
  voice_enabled: false
  transcript_ingest: true
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Endpoint != "wss://voice.example.com/session" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.Profile != "high_school" {
		t.Errorf("profile = %q", cfg.Profile)
	}
	if cfg.Capacity != 200 {
		t.Errorf("capacity = %d", cfg.Capacity)
	}
	if cfg.FlagEnabled("voice_enabled") {
		t.Error("voice_enabled should be off")
	}
	if !cfg.FlagEnabled("transcript_ingest") {
		t.Error("transcript_ingest should be on")
	}
	if cfg.Path() != path {
		t.Errorf("path = %q", cfg.Path())
	}
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\t не yaml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
