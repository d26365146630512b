package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nback.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		rec := model.SessionRecord{
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
			Stats: model.SessionStats{
				Mode:          "dual",
				Level:         2,
				Trials:        20,
				PlannedTrials: 20,
				TicksPerTrial: 30,
				Score:         0.8,
				SoundSet:      "letters",
				Channels: []model.ChannelStats{
					{Channel: "position", Modality: model.Position, TruePositive: 4, TrueNegative: 12, FalsePositive: 1, FalseNegative: 1, Defined: 18, Accuracy: 16.0 / 18},
					{Channel: "audio", Modality: model.Audio, TruePositive: 3, TrueNegative: 12, FalsePositive: 1, FalseNegative: 2, Defined: 18, Accuracy: 15.0 / 18},
				},
			},
		}
		id, err := st.InsertSession(ctx, rec)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Mode:        "dual",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window session ids: %v", report.WindowSessionIDs)
	}
	if len(report.ChannelsAll) != 2 || report.ChannelsAll[0].TruePositive != 8 {
		t.Fatalf("unexpected merged channels: %+v", report.ChannelsAll)
	}
	if len(report.ChannelsWindow) != 2 || report.ChannelsWindow[1].TruePositive != 3 {
		t.Fatalf("unexpected window channels: %+v", report.ChannelsWindow)
	}
	if got := report.Channels(); len(got) != 2 || got[0] != "position" || got[1] != "audio" {
		t.Fatalf("unexpected channel order: %v", got)
	}

	other, err := BuildReport(ctx, st, model.StatsConfig{Mode: "audio"})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(other.Sessions) != 0 || len(other.ChannelsAll) != 0 {
		t.Fatalf("expected empty report for another mode")
	}
}
