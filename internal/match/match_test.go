package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nback/internal/model"
)

var pos = model.Channel(model.Position)

func positions(back int, values ...int) []model.Stimulus {
	out := make([]model.Stimulus, len(values))
	for i, v := range values {
		out[i] = model.Stimulus{Trial: i, Back: back, Values: map[model.Channel]int{pos: v}}
	}
	return out
}

func TestEvaluateWarmUpNeverMatches(t *testing.T) {
	stimuli := positions(2, 4, 4, 4)
	for trial := 0; trial < 2; trial++ {
		res := Evaluate(trial, stimuli, nil, []model.Channel{pos})
		cr, ok := res.For(pos)
		require.True(t, ok)
		assert.False(t, cr.Reference)
		assert.False(t, cr.Match)
		assert.Equal(t, model.TrueNegative, cr.Outcome)
		assert.False(t, cr.Defined())
	}
}

func TestEvaluateWarmUpFlagIsFalsePositive(t *testing.T) {
	stimuli := positions(2, 4, 4, 4)
	inputs := map[model.Channel]model.Input{pos: {Channel: pos, Trial: 1, TickOffset: 3}}
	cr, _ := Evaluate(1, stimuli, inputs, []model.Channel{pos}).For(pos)
	assert.Equal(t, model.FalsePositive, cr.Outcome)
	assert.True(t, cr.Defined())
	assert.Equal(t, 3, cr.ReactionTicks)
}

func TestEvaluateMatchIsValueEquality(t *testing.T) {
	stimuli := positions(2, 1, 5, 1, 6)
	channels := []model.Channel{pos}

	cr, _ := Evaluate(2, stimuli, nil, channels).For(pos)
	assert.True(t, cr.Match)
	assert.Equal(t, model.FalseNegative, cr.Outcome)

	cr, _ = Evaluate(3, stimuli, nil, channels).For(pos)
	assert.False(t, cr.Match)
	assert.Equal(t, model.TrueNegative, cr.Outcome)

	hit := map[model.Channel]model.Input{pos: {Channel: pos, Trial: 2, TickOffset: 7}}
	cr, _ = Evaluate(2, stimuli, hit, channels).For(pos)
	assert.Equal(t, model.TruePositive, cr.Outcome)
	assert.Equal(t, 7, cr.ReactionTicks)
}

func TestEvaluateUsesPerTrialBack(t *testing.T) {
	stimuli := positions(1, 3, 8, 3)
	stimuli[2].Back = 2
	cr, _ := Evaluate(2, stimuli, nil, []model.Channel{pos}).For(pos)
	assert.True(t, cr.Match)
}

func TestEvaluateArithmetic(t *testing.T) {
	arith := model.Channel(model.Arithmetic)
	stimuli := []model.Stimulus{
		{Trial: 0, Back: 1, Op: model.OpAdd, Operand: 7},
		{Trial: 1, Back: 1, Op: model.OpDivide, Operand: 4},
	}
	channels := []model.Channel{arith}

	cases := []struct {
		name    string
		inputs  map[model.Channel]model.Input
		outcome model.Outcome
	}{
		{"correct", map[model.Channel]model.Input{arith: {Answer: 1.75}}, model.TruePositive},
		{"within tolerance", map[model.Channel]model.Input{arith: {Answer: 1.755}}, model.TruePositive},
		{"wrong", map[model.Channel]model.Input{arith: {Answer: 2}}, model.FalsePositive},
		{"missing", nil, model.FalseNegative},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cr, ok := Evaluate(1, stimuli, tc.inputs, channels).For(arith)
			require.True(t, ok)
			assert.InDelta(t, 1.75, cr.Expected, 1e-9)
			assert.Equal(t, tc.outcome, cr.Outcome)
		})
	}

	cr, _ := Evaluate(0, stimuli, nil, channels).For(arith)
	assert.Equal(t, model.TrueNegative, cr.Outcome)
	cr, _ = Evaluate(0, stimuli, map[model.Channel]model.Input{arith: {Answer: 7}}, channels).For(arith)
	assert.Equal(t, model.FalsePositive, cr.Outcome)
}

func TestEvaluateOneOutcomePerChannel(t *testing.T) {
	audio := model.Channel(model.Audio)
	stimuli := []model.Stimulus{
		{Trial: 0, Back: 1, Values: map[model.Channel]int{pos: 0, audio: 1}},
		{Trial: 1, Back: 1, Values: map[model.Channel]int{pos: 0, audio: 2}},
	}
	res := Evaluate(1, stimuli, nil, []model.Channel{pos, audio})
	require.Len(t, res.Channels, 2)
	assert.Equal(t, pos, res.Channels[0].Channel)
	assert.Equal(t, audio, res.Channels[1].Channel)
}

func TestEvaluateCombinationComparesAcrossStreams(t *testing.T) {
	audio := model.Channel(model.Audio)
	stimuli := []model.Stimulus{
		{Trial: 0, Back: 1, Values: map[model.Channel]int{model.Vis: 2, audio: 5}},
		{Trial: 1, Back: 1, Values: map[model.Channel]int{model.Vis: 5, audio: 2}},
		{Trial: 2, Back: 1, Values: map[model.Channel]int{model.Vis: 5, audio: 3}},
	}
	channels := []model.Channel{model.VisVis, model.VisAudio, model.AudioVis, audio}

	res := Evaluate(1, stimuli, nil, channels)
	want := map[model.Channel]bool{model.VisVis: false, model.VisAudio: true, model.AudioVis: true, audio: false}
	for ch, match := range want {
		cr, ok := res.For(ch)
		require.True(t, ok, ch)
		assert.Equal(t, match, cr.Match, ch)
	}

	res = Evaluate(2, stimuli, nil, channels)
	want = map[model.Channel]bool{model.VisVis: true, model.VisAudio: false, model.AudioVis: false, audio: false}
	for ch, match := range want {
		cr, _ := res.For(ch)
		assert.Equal(t, match, cr.Match, ch)
	}

	hit := map[model.Channel]model.Input{model.VisAudio: {Channel: model.VisAudio, Trial: 1}}
	cr, _ := Evaluate(1, stimuli, hit, channels).For(model.VisAudio)
	assert.Equal(t, model.TruePositive, cr.Outcome)
	cr, _ = Evaluate(1, stimuli, hit, channels).For(model.AudioVis)
	assert.Equal(t, model.FalseNegative, cr.Outcome)
}
