package stats

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/model"
)

// Aggregate folds trial results into per-channel stats, in channel order.
// It is a pure function of its inputs.
func Aggregate(results []model.TrialResult, channels []model.Channel) []model.ChannelStats {
	out := make([]model.ChannelStats, len(channels))
	rtSum := make([]int, len(channels))
	for i, ch := range channels {
		out[i] = model.ChannelStats{Channel: ch, Modality: ch.Modality()}
	}
	for _, res := range results {
		for i, ch := range channels {
			cr, ok := res.For(ch)
			if !ok {
				continue
			}
			cs := &out[i]
			switch cr.Outcome {
			case model.TruePositive:
				cs.TruePositive++
				rtSum[i] += cr.ReactionTicks
			case model.TrueNegative:
				if !cr.Defined() {
					continue
				}
				cs.TrueNegative++
			case model.FalsePositive:
				cs.FalsePositive++
			case model.FalseNegative:
				cs.FalseNegative++
			}
			cs.Defined++
		}
	}
	for i := range out {
		finalize(&out[i], float64(rtSum[i]))
	}
	return out
}

func finalize(cs *model.ChannelStats, rtSum float64) {
	cs.Accuracy = 0
	if cs.Defined > 0 {
		cs.Accuracy = float64(cs.TruePositive+cs.TrueNegative) / float64(cs.Defined)
	}
	cs.MeanReactionTicks = 0
	if cs.TruePositive > 0 {
		cs.MeanReactionTicks = rtSum / float64(cs.TruePositive)
	}
}

// Composite is the session score: the lowest accuracy over channels that had
// at least one defined trial.
func Composite(channels []model.ChannelStats) float64 {
	defined := lo.Filter(channels, func(c model.ChannelStats, _ int) bool { return c.Defined > 0 })
	if len(defined) == 0 {
		return 0
	}
	return lo.MinBy(defined, func(a, b model.ChannelStats) bool { return a.Accuracy < b.Accuracy }).Accuracy
}

// Merge sums channel stats from several sessions by channel. The result is
// ordered by first appearance.
func Merge(groups ...[]model.ChannelStats) []model.ChannelStats {
	var out []model.ChannelStats
	index := map[model.Channel]int{}
	rtSum := map[model.Channel]float64{}
	for _, group := range groups {
		for _, cs := range group {
			i, ok := index[cs.Channel]
			if !ok {
				i = len(out)
				index[cs.Channel] = i
				out = append(out, model.ChannelStats{Channel: cs.Channel, Modality: cs.Modality})
			}
			m := &out[i]
			m.TruePositive += cs.TruePositive
			m.TrueNegative += cs.TrueNegative
			m.FalsePositive += cs.FalsePositive
			m.FalseNegative += cs.FalseNegative
			m.Defined += cs.Defined
			rtSum[cs.Channel] += cs.MeanReactionTicks * float64(cs.TruePositive)
		}
	}
	for i := range out {
		finalize(&out[i], rtSum[out[i].Channel])
	}
	return out
}

// Outcome returns model.ErrIncompleteSession for stats of a session that ended
// early.
func Outcome(s model.SessionStats) error {
	if s.Incomplete {
		return model.ErrIncompleteSession
	}
	return nil
}
