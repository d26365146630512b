package stats

import (
	"sort"

	"github.com/verte-zerg/nback/internal/model"
)

// TopChannels returns up to n channels with the most defined trials.
func TopChannels(aggs []model.ChannelStats, n int) []model.Channel {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.ChannelStats, len(aggs))
	copy(items, aggs)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Defined == items[j].Defined {
			return items[i].Channel < items[j].Channel
		}
		return items[i].Defined > items[j].Defined
	})
	n = min(n, len(items))
	out := make([]model.Channel, 0, n)
	for _, cs := range items[:n] {
		out = append(out, cs.Channel)
	}
	return out
}
