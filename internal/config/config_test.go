package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Play.Mode != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[play]
mode = "triple"
level = 3
audio-sets = ["letters", "nato"]
interference-chance = 0.2

[progression]
advance = 0.85
fallback-sessions = 3

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Play.Mode == nil || *cfg.Play.Mode != "triple" {
		t.Fatalf("unexpected mode: %v", cfg.Play.Mode)
	}
	if cfg.Play.Level == nil || *cfg.Play.Level != 3 {
		t.Fatalf("unexpected level: %v", cfg.Play.Level)
	}
	if cfg.Play.AudioSets == nil || len(*cfg.Play.AudioSets) != 2 {
		t.Fatalf("unexpected audio sets: %v", cfg.Play.AudioSets)
	}
	if cfg.Play.Trials != nil {
		t.Fatalf("expected unset trials, got %d", *cfg.Play.Trials)
	}
	if cfg.Progression.Advance == nil || *cfg.Progression.Advance != 0.85 {
		t.Fatalf("unexpected advance: %v", cfg.Progression.Advance)
	}
	if cfg.Progression.FallbackSessions == nil || *cfg.Progression.FallbackSessions != 3 {
		t.Fatalf("unexpected fallback sessions: %v", cfg.Progression.FallbackSessions)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[play]\nlevle = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "levle") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "nback", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "nback", "nback.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultSoundSetDir(); got != filepath.Join("/cfg", "nback", "sounds") {
		t.Fatalf("unexpected sound dir: %s", got)
	}
}
