package stats

import (
	"sort"

	"github.com/verte-zerg/nback/internal/model"
)

// SortByAccuracy returns a copy of aggs ordered from lowest to highest accuracy.
func SortByAccuracy(aggs []model.ChannelStats) []model.ChannelStats {
	out := make([]model.ChannelStats, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Accuracy == out[j].Accuracy {
			return out[i].Channel < out[j].Channel
		}
		return out[i].Accuracy < out[j].Accuracy
	})
	return out
}

// WeakestChannel returns the channel that limits the composite score.
func WeakestChannel(aggs []model.ChannelStats) (model.ChannelStats, bool) {
	for _, cs := range SortByAccuracy(aggs) {
		if cs.Defined > 0 {
			return cs, true
		}
	}
	return model.ChannelStats{}, false
}
