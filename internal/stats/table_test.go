package stats

import (
	"testing"

	"github.com/verte-zerg/nback/internal/model"
)

func TestChannelTableAlignsColumns(t *testing.T) {
	lines := channelTable([]model.ChannelStats{
		{Channel: "audio", Accuracy: 0.975, TruePositive: 12, MeanReactionTicks: 4},
		{Channel: "position2", Accuracy: 0.08, TruePositive: 3, FalseNegative: 10, MeanReactionTicks: 12.3},
	})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Channel   Accuracy Hits Misses False Correct Rej Avg RT" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "audio       97.50%   12      0     0           0    4.0" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "position2    8.00%    3     10     0           0   12.3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestChannelTableCountsWideRunes(t *testing.T) {
	lines := channelTable([]model.ChannelStats{{Channel: "数"}})
	if want := "数         0.00%"; lines[1][:len(want)] != want {
		t.Fatalf("expected wide channel padded to 7 cells, got %q", lines[1])
	}
}
