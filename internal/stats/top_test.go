package stats

import (
	"testing"

	"github.com/verte-zerg/nback/internal/model"
)

func TestTopChannels(t *testing.T) {
	aggs := []model.ChannelStats{
		{Channel: "audio", Defined: 10},
		{Channel: "position", Defined: 18},
		{Channel: "color", Defined: 18},
	}
	top := TopChannels(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(top))
	}
	if top[0] != "color" || top[1] != "position" {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestWeakestChannelSkipsUndefined(t *testing.T) {
	aggs := []model.ChannelStats{
		{Channel: "position", Defined: 18, Accuracy: 0.9},
		{Channel: "audio", Defined: 18, Accuracy: 0.7},
		{Channel: "color"},
	}
	weak, ok := WeakestChannel(aggs)
	if !ok || weak.Channel != "audio" {
		t.Fatalf("expected audio, got %+v", weak)
	}
}
