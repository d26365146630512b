package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nback/internal/config"
	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/stats"
	"github.com/verte-zerg/nback/internal/statsui"
	"github.com/verte-zerg/nback/internal/store"
)

const defaultCurveWindow = 5

var (
	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsJSON        bool
	statsText        bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsJSON, "json", false, "print the report as JSON instead of opening the viewer")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a plain-text report instead of opening the viewer")
	return cmd
}

// statsExport is the JSON shape of `nback stats --json`.
type statsExport struct {
	Trend      stats.Trend                    `json:"trend"`
	Sessions   []model.SessionSummary         `json:"sessions"`
	Channels   []model.ChannelStats           `json:"channels"`
	Window     []model.ChannelStats           `json:"window_channels"`
	PerSession map[int64][]model.ChannelStats `json:"per_session"`
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if err := configureLogger(logLevel, os.Stderr, false); err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsJSON || statsText {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if statsText {
			return renderTextReport(cmd.OutOrStdout(), report, cfg)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statsExport{
			Trend:      stats.Summarize(report.Sessions),
			Sessions:   report.Sessions,
			Channels:   report.ChannelsAll,
			Window:     report.ChannelsWindow,
			PerSession: report.PerSession,
		})
	}

	viewer := statsui.NewModel(st, cfg)
	program := tea.NewProgram(viewer, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <session-id>",
		Short: "Print the trial-by-trial record of a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveCmd,
	}
}

func runArchiveCmd(cmd *cobra.Command, args []string) error {
	if err := configureLogger(logLevel, os.Stderr, false); err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	archive, err := st.LoadArchive(context.Background(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("session %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(archive)
}

func renderTextReport(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderChannelTable(w, "Channels (all sessions)", report.ChannelsAll); err != nil {
		return err
	}
	title := fmt.Sprintf("Channels (last %d sessions)", len(report.WindowSessionIDs))
	if err := stats.RenderChannelTable(w, title, report.ChannelsWindow); err != nil {
		return err
	}
	return stats.RenderChannelCurves(w, report.Sessions, report.PerSession, report.Channels(), cfg.CurveWindow)
}
