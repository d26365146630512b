// Package main provides the CLI entrypoint for nback.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nback/internal/alphabet"
	"github.com/verte-zerg/nback/internal/config"
	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/preset"
	"github.com/verte-zerg/nback/internal/random"
	"github.com/verte-zerg/nback/internal/store"
	"github.com/verte-zerg/nback/internal/tui"
)

const (
	defaultTickMs   = 100
	defaultLogLevel = "info"
)

var (
	playMode               string
	playLevel              int
	playTrials             int
	playTicks              int
	playDisplay            int
	playLeadIn             int
	playMulti              int
	playVariable           bool
	playCrab               bool
	playManual             bool
	playFeedback           bool
	playAudioSets          []string
	playMatchChance        float64
	playInterferenceChance float64
	playSeed               int64
	playTickMs             int
	logLevel               string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := preset.Default()
	rootCmd := &cobra.Command{
		Use:           "nback",
		Short:         "Terminal N-back trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", preset.DefaultName, "mode preset (see: nback modes)")
	rootCmd.Flags().IntVar(&playLevel, "level", defaults.Level, "starting N (default: restored from history)")
	rootCmd.Flags().IntVar(&playTrials, "trials", defaults.Trials, "trials per session")
	rootCmd.Flags().IntVar(&playTicks, "ticks", defaults.TicksPerTrial, "ticks per trial")
	rootCmd.Flags().IntVar(&playDisplay, "display", defaults.DisplayTicks, "ticks a cue stays visible")
	rootCmd.Flags().IntVar(&playLeadIn, "lead-in", defaults.LeadInTicks, "ticks before the first trial")
	rootCmd.Flags().IntVar(&playMulti, "multi", defaults.MultiStim, "simultaneous position squares (1-4)")
	rootCmd.Flags().BoolVar(&playVariable, "variable", false, "draw a random N per trial")
	rootCmd.Flags().BoolVar(&playCrab, "crab", false, "crab back distances 1,3,5,...")
	rootCmd.Flags().BoolVar(&playManual, "manual", false, "keep the level fixed")
	rootCmd.Flags().BoolVar(&playFeedback, "feedback", defaults.Feedback, "flash missed and false matches")
	rootCmd.Flags().StringSliceVar(&playAudioSets, "audio-sets", nil, "sound sets to draw from (built-in or files in the sounds dir)")
	rootCmd.Flags().Float64Var(&playMatchChance, "match-chance", defaults.MatchChance, "probability of a planned match per trial (0-1)")
	rootCmd.Flags().Float64Var(&playInterferenceChance, "interference-chance", defaults.InterferenceChance, "probability of a lure on non-match trials (0-1)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "seed for reproducible sessions")
	rootCmd.Flags().IntVar(&playTickMs, "tick-ms", defaultTickMs, "milliseconds per tick")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newArchiveCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	logFile, err := configureFileLogger(logLevel, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	mode, err := buildMode(cmd, fileCfg)
	if err != nil {
		return err
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	seeds := random.Crypto()
	if cmd.Flags().Changed("seed") {
		seeds = random.Fixed(playSeed)
	}
	player, err := tui.NewModel(tui.Options{
		Mode:         mode,
		Store:        st,
		Seeds:        seeds,
		TickInterval: time.Duration(playTickMs) * time.Millisecond,
		Logger:       log.Logger,
		RestoreLevel: !cmd.Flags().Changed("level") && fileCfg.Play.Level == nil,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(player, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildMode starts from the chosen preset and overlays the config file and
// explicitly set flags. The level is only pinned when set by either; else it
// is restored from history by the player.
func buildMode(cmd *cobra.Command, fileCfg config.FileConfig) (model.Mode, error) {
	play := fileCfg.Play
	applyConfig(cmd, "mode", &playMode, play.Mode)
	mode, ok := preset.Lookup(playMode)
	if !ok {
		return model.Mode{}, fmt.Errorf("unknown mode %q (available: %s)", playMode, strings.Join(preset.Names(), ", "))
	}

	overlay(cmd, "level", playLevel, play.Level, &mode.Level)
	overlay(cmd, "trials", playTrials, play.Trials, &mode.Trials)
	overlay(cmd, "ticks", playTicks, play.Ticks, &mode.TicksPerTrial)
	overlay(cmd, "display", playDisplay, play.Display, &mode.DisplayTicks)
	overlay(cmd, "lead-in", playLeadIn, play.LeadIn, &mode.LeadInTicks)
	overlay(cmd, "multi", playMulti, play.Multi, &mode.MultiStim)
	overlay(cmd, "variable", playVariable, play.Variable, &mode.VariableN)
	overlay(cmd, "crab", playCrab, play.Crab, &mode.Crab)
	overlay(cmd, "manual", playManual, play.Manual, &mode.Manual)
	overlay(cmd, "feedback", playFeedback, play.Feedback, &mode.Feedback)
	overlay(cmd, "match-chance", playMatchChance, play.MatchChance, &mode.MatchChance)
	overlay(cmd, "interference-chance", playInterferenceChance, play.InterferenceChance, &mode.InterferenceChance)
	applyConfig(cmd, "tick-ms", &playTickMs, play.TickMs)
	applyConfig(cmd, "audio-sets", &playAudioSets, play.AudioSets)

	prog := fileCfg.Progression
	setIf(prog.Advance, &mode.Progression.Advance)
	setIf(prog.Retreat, &mode.Progression.Retreat)
	setIf(prog.Cooldown, &mode.Progression.Cooldown)
	setIf(prog.FallbackSessions, &mode.Progression.FallbackSessions)

	if len(playAudioSets) > 0 {
		sets, err := alphabet.Resolve(playAudioSets, config.DefaultSoundSetDir())
		if err != nil {
			return model.Mode{}, err
		}
		mode.SoundSets = sets
	}
	if playTickMs <= 0 {
		return model.Mode{}, fmt.Errorf("--tick-ms must be > 0")
	}
	if err := mode.Validate(); err != nil {
		return model.Mode{}, err
	}
	return mode, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List mode presets and sound sets",
		Args:  cobra.NoArgs,
		RunE:  runModesCmd,
	}
}

func runModesCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, "Modes:"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, name := range preset.Names() {
		if _, err := fmt.Fprintf(out, "  %-16s %s\n", name, preset.Describe(name)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintln(out, "Sound sets:"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, name := range soundSetNames(config.DefaultSoundSetDir()) {
		if _, err := fmt.Fprintf(out, "  %s\n", name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// soundSetNames lists built-in sets followed by user sets found in dir.
func soundSetNames(dir string) []string {
	names := alphabet.SoundSetNames()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".txt")+" (user)")
	}
	return names
}

// applyConfig copies a config value into target unless the flag was set.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// overlay sets a mode field from an explicitly set flag, then from the config
// file. Otherwise the preset value stays.
func overlay[T any](cmd *cobra.Command, name string, flag T, value, target *T) {
	if cmd.Flags().Changed(name) {
		*target = flag
		return
	}
	setIf(value, target)
}

func setIf[T any](value, target *T) {
	if value != nil {
		*target = *value
	}
}

func defaultConfigTemplate() string {
	d := preset.Default()
	return fmt.Sprintf(`# nback configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# mode = %q              # Mode preset (see: nback modes)
# level = %d                  # Starting N; omit to restore from history
# trials = %d                # Trials per session
# ticks = %d                 # Ticks per trial
# display = %d                # Ticks a cue stays visible
# lead-in = %d               # Ticks before the first trial
# multi = %d                  # Simultaneous position squares (1-4)
# variable = false            # Random N per trial
# crab = false                # Crab back distances
# manual = false              # Keep the level fixed
# feedback = %t             # Flash missed and false matches
# audio-sets = ["letters"]    # Sound sets to draw from
# match-chance = %.3f        # Planned match probability per trial
# interference-chance = %.3f # Lure probability on non-match trials
# tick-ms = %d               # Milliseconds per tick

[progression]
# advance = %.2f             # Score to advance a level
# retreat = %.2f             # Score below which the level drops
# cooldown = %d               # Sessions after a retreat before advancing again
# fallback-sessions = %d      # Poor sessions in a row before retreating

[log]
# level = %q             # trace, debug, info, warn, error
`,
		preset.DefaultName,
		d.Level,
		d.Trials,
		d.TicksPerTrial,
		d.DisplayTicks,
		d.LeadInTicks,
		d.MultiStim,
		d.Feedback,
		d.MatchChance,
		d.InterferenceChance,
		defaultTickMs,
		d.Progression.Advance,
		d.Progression.Retreat,
		d.Progression.Cooldown,
		d.Progression.FallbackSessions,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
