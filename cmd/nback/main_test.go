package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/nback/internal/config"
	"github.com/verte-zerg/nback/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestBuildModeFlagsOverrideConfig(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--mode", "audio", "--trials", "30"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileCfg := config.FileConfig{
		Play: config.PlayConfig{
			Mode:   ptr("dual"),
			Trials: ptr(25),
			Level:  ptr(3),
		},
		Progression: config.ProgressionConfig{Cooldown: ptr(2)},
	}
	mode, err := buildMode(root, fileCfg)
	if err != nil {
		t.Fatalf("build mode: %v", err)
	}
	if mode.Name != "audio" {
		t.Fatalf("expected flag mode, got %s", mode.Name)
	}
	if mode.Trials != 30 {
		t.Fatalf("expected flag trials 30, got %d", mode.Trials)
	}
	if mode.Level != 3 {
		t.Fatalf("expected config level 3, got %d", mode.Level)
	}
	if mode.Progression.Cooldown != 2 {
		t.Fatalf("expected config cooldown 2, got %d", mode.Progression.Cooldown)
	}
}

func TestBuildModeRejectsStrictDeviation(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--mode", "jaeggi", "--trials", "24"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, err := buildMode(root, config.FileConfig{})
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildModeUnknownMode(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--mode", "penta"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, err := buildMode(root, config.FileConfig{})
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Play.Mode != nil {
		t.Fatalf("template values must be commented out")
	}
}

func TestSoundSetNamesIncludesUserSets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greek.txt"), []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatalf("write set: %v", err)
	}
	names := soundSetNames(dir)
	if names[len(names)-1] != "greek (user)" {
		t.Fatalf("expected user set last, got %v", names)
	}
}
