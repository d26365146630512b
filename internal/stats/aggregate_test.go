package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nback/internal/model"
)

const (
	pos   = model.Channel(model.Position)
	audio = model.Channel(model.Audio)
)

func trial(t int, reference bool, outcomes map[model.Channel]model.Outcome) model.TrialResult {
	res := model.TrialResult{Trial: t, Back: 2}
	for _, ch := range []model.Channel{pos, audio} {
		o, ok := outcomes[ch]
		if !ok {
			continue
		}
		res.Channels = append(res.Channels, model.ChannelResult{
			Channel:       ch,
			Reference:     reference,
			Match:         o == model.TruePositive || o == model.FalseNegative,
			Flagged:       o == model.TruePositive || o == model.FalsePositive,
			Outcome:       o,
			ReactionTicks: 4,
		})
	}
	return res
}

func sample() []model.TrialResult {
	return []model.TrialResult{
		trial(0, false, map[model.Channel]model.Outcome{pos: model.TrueNegative, audio: model.FalsePositive}),
		trial(1, false, map[model.Channel]model.Outcome{pos: model.TrueNegative, audio: model.TrueNegative}),
		trial(2, true, map[model.Channel]model.Outcome{pos: model.TruePositive, audio: model.TrueNegative}),
		trial(3, true, map[model.Channel]model.Outcome{pos: model.TrueNegative, audio: model.FalseNegative}),
		trial(4, true, map[model.Channel]model.Outcome{pos: model.FalsePositive, audio: model.TruePositive}),
		trial(5, true, map[model.Channel]model.Outcome{pos: model.TrueNegative, audio: model.TrueNegative}),
	}
}

func TestAggregateCountsDefinedTrials(t *testing.T) {
	got := Aggregate(sample(), []model.Channel{pos, audio})
	require.Len(t, got, 2)

	p := got[0]
	assert.Equal(t, pos, p.Channel)
	assert.Equal(t, 4, p.Defined)
	assert.Equal(t, 1, p.TruePositive)
	assert.Equal(t, 2, p.TrueNegative)
	assert.Equal(t, 1, p.FalsePositive)
	assert.InDelta(t, 0.75, p.Accuracy, 1e-9)
	assert.InDelta(t, 4.0, p.MeanReactionTicks, 1e-9)

	a := got[1]
	assert.Equal(t, 5, a.Defined, "warm-up false alarm counts as defined")
	assert.InDelta(t, 0.6, a.Accuracy, 1e-9)
	assert.Equal(t, 1, a.Matches()-a.TruePositive)
}

func TestAggregateIsIdempotent(t *testing.T) {
	channels := []model.Channel{pos, audio}
	assert.Equal(t, Aggregate(sample(), channels), Aggregate(sample(), channels))
}

func TestCompositeIsMinimum(t *testing.T) {
	got := Aggregate(sample(), []model.Channel{pos, audio})
	assert.InDelta(t, 0.6, Composite(got), 1e-9)
	assert.Zero(t, Composite(nil))
	assert.InDelta(t, 0.9, Composite([]model.ChannelStats{
		{Channel: pos, Defined: 10, Accuracy: 0.9},
		{Channel: audio},
	}), 1e-9)
}

func TestMergeSumsCounts(t *testing.T) {
	one := Aggregate(sample(), []model.Channel{pos, audio})
	merged := Merge(one, one)
	require.Len(t, merged, 2)
	assert.Equal(t, 2*one[0].Defined, merged[0].Defined)
	assert.InDelta(t, one[0].Accuracy, merged[0].Accuracy, 1e-9)
	assert.InDelta(t, one[0].MeanReactionTicks, merged[0].MeanReactionTicks, 1e-9)
}

func TestOutcome(t *testing.T) {
	assert.ErrorIs(t, Outcome(model.SessionStats{Incomplete: true}), model.ErrIncompleteSession)
	assert.NoError(t, Outcome(model.SessionStats{}))
}

func TestSummarize(t *testing.T) {
	tr := Summarize([]model.SessionSummary{
		{Level: 2, Score: 0.85, Delta: 1},
		{Level: 3, Score: 0.4, Delta: -1},
		{Level: 2, Score: 0.2, Incomplete: true},
	})
	assert.Equal(t, 3, tr.Sessions)
	assert.Equal(t, 2, tr.Complete)
	assert.Equal(t, 3, tr.BestLevel)
	assert.Equal(t, 2, tr.CurrentLevel)
	assert.InDelta(t, 0.625, tr.AvgScore, 1e-9)
	assert.Equal(t, 1, tr.Advances)
	assert.Equal(t, 1, tr.Retreats)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2.5}, MovingAverage([]float64{1, 2, 3}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
}
