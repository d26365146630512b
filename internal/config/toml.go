// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play        PlayConfig        `toml:"play"`
	Progression ProgressionConfig `toml:"progression"`
	Log         LogConfig         `toml:"log"`
}

// PlayConfig maps session settings. Nil fields are unset.
type PlayConfig struct {
	Mode               *string   `toml:"mode"`
	Level              *int      `toml:"level"`
	Trials             *int      `toml:"trials"`
	Ticks              *int      `toml:"ticks"`
	Display            *int      `toml:"display"`
	LeadIn             *int      `toml:"lead-in"`
	Multi              *int      `toml:"multi"`
	Variable           *bool     `toml:"variable"`
	Crab               *bool     `toml:"crab"`
	Manual             *bool     `toml:"manual"`
	Feedback           *bool     `toml:"feedback"`
	AudioSets          *[]string `toml:"audio-sets"`
	MatchChance        *float64  `toml:"match-chance"`
	InterferenceChance *float64  `toml:"interference-chance"`
	TickMs             *int      `toml:"tick-ms"`
}

// ProgressionConfig maps level policy thresholds.
type ProgressionConfig struct {
	Advance          *float64 `toml:"advance"`
	Retreat          *float64 `toml:"retreat"`
	Cooldown         *int     `toml:"cooldown"`
	FallbackSessions *int     `toml:"fallback-sessions"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
