package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "nback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		rec := model.SessionRecord{
			StartedAt: start,
			EndedAt:   start.Add(time.Minute),
			Delta:     i % 2,
			Stats: model.SessionStats{
				Mode:          "dual",
				Level:         2 + i/2,
				Trials:        20,
				PlannedTrials: 20,
				TicksPerTrial: 30,
				Score:         0.7 + 0.1*float64(i),
				SoundSet:      "letters",
				Channels: []model.ChannelStats{
					{Channel: "position", Modality: model.Position, TruePositive: 4, TrueNegative: 12, Defined: 18, Accuracy: 0.9},
					{Channel: "audio", Modality: model.Audio, TruePositive: 3, TrueNegative: 10, FalseNegative: 2, Defined: 16, Accuracy: 0.7},
				},
			},
		}
		if _, err := st.InsertSession(context.Background(), rec); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	return st
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsSummary(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	out := m.View()
	for _, want := range []string{"Overview", "Sessions", "Best N", "mode=any"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestDefaultSelectionUsesTopChannels(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1})
	if len(m.selection) != 2 || m.selection[0] != "position" {
		t.Fatalf("unexpected default selection: %v", m.selection)
	}
}

func TestChannelTableWeakestFirst(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	rows := m.channelTable.Rows()
	if len(rows) != 2 || rows[0][0] != "audio" {
		t.Fatalf("expected audio first, got %v", rows)
	}
}

func TestApplySelectionIgnoresUnknown(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1})
	m.applySelection("audio, color ,audio")
	if !m.selectionCustom || len(m.selection) != 1 || m.selection[0] != "audio" {
		t.Fatalf("unexpected selection: %v", m.selection)
	}
	m.applySelection("color")
	if m.selectionCustom || len(m.selection) != 2 {
		t.Fatalf("expected fallback selection, got %v", m.selection)
	}
}

func TestFilterParsing(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1})
	m.filterInputs[0].SetValue("audio")
	m.filterInputs[2].SetValue("-1")
	if _, err := m.parseFilter(); err == nil {
		t.Fatalf("expected error for negative last")
	}
	m.filterInputs[2].SetValue("5")
	m.filterInputs[3].SetValue("0")
	if _, err := m.parseFilter(); err == nil {
		t.Fatalf("expected error for zero window")
	}
	m.filterInputs[3].SetValue("3")
	cfg, err := m.parseFilter()
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Mode != "audio" || cfg.Last != 5 || cfg.CurveWindow != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d)=%d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d)=%d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("ab\ncd\nef", 4, 2)
	if out != "ab  \ncd  " {
		t.Fatalf("unexpected fit: %q", out)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
