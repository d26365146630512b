package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/preset"
)

func finished(mode model.Mode, score float64) model.SessionStats {
	return model.SessionStats{
		Mode:          mode.Name,
		Level:         mode.Level,
		Trials:        mode.Trials,
		PlannedTrials: mode.Trials,
		TicksPerTrial: mode.TicksPerTrial,
		DisplayTicks:  mode.DisplayTicks,
		Score:         score,
		Strict:        mode.Strict,
		Manual:        mode.Manual,
	}
}

func dual(t *testing.T) model.Mode {
	t.Helper()
	m, ok := preset.Lookup("dual")
	require.True(t, ok)
	m.Progression.Cooldown = 0
	return m
}

func TestNextThresholds(t *testing.T) {
	mode := dual(t)
	p := PolicyFor(mode)
	cases := []struct {
		score float64
		delta int
	}{
		{1.0, 1},
		{0.80, 1},
		{0.79, 0},
		{0.50, 0},
		{0.49, -1},
		{0, -1},
	}
	for _, tc := range cases {
		d := p.Next(finished(mode, tc.score), nil)
		assert.Equal(t, tc.delta, d.Delta, "score %.2f", tc.score)
		assert.NotEmpty(t, d.Rationale)
	}
}

func TestNextIsMonotoneInScore(t *testing.T) {
	mode := dual(t)
	policies := []Policy{
		PolicyFor(mode),
		{Advance: 0.8, Retreat: 0.5, Cooldown: 2, FallbackSessions: 3},
		PolicyFor(preset.Default()),
	}
	histories := [][]model.SessionSummary{
		nil,
		{{Mode: "dual", Level: 2, Score: 0.3}, {Mode: "dual", Level: 2, Score: 0.4}},
		{{Mode: "dual", Level: 3, Score: 0.2, Delta: -1}},
	}
	for _, p := range policies {
		for _, recent := range histories {
			prev := -2
			for i := 0; i <= 100; i++ {
				d := p.Next(finished(mode, float64(i)/100), recent)
				require.GreaterOrEqual(t, d.Delta, prev, "score %d%%", i)
				prev = d.Delta
			}
		}
	}
}

func TestNextNeverBelowMinimum(t *testing.T) {
	mode := dual(t)
	mode.Level = 1
	next, d := NextSessionConfig(finished(mode, 0), mode, nil)
	assert.Equal(t, 0, d.Delta)
	assert.Equal(t, 1, next.Level)
}

func TestNextHoldsManualAndIncomplete(t *testing.T) {
	mode := dual(t)
	mode.Manual = true
	assert.Equal(t, 0, PolicyFor(mode).Next(finished(mode, 1), nil).Delta)

	mode.Manual = false
	st := finished(mode, 1)
	st.Incomplete = true
	st.Trials = 10
	assert.Equal(t, 0, PolicyFor(mode).Next(st, nil).Delta)
}

func TestCooldownBlocksAdvance(t *testing.T) {
	mode := dual(t)
	mode.Progression.Cooldown = 1
	p := PolicyFor(mode)
	recent := []model.SessionSummary{{Mode: "dual", Level: 3, Score: 0.3, Delta: -1}}
	assert.Equal(t, 0, p.Next(finished(mode, 0.95), recent).Delta)

	recent = append(recent, model.SessionSummary{Mode: "dual", Level: 2, Score: 0.6})
	assert.Equal(t, 1, p.Next(finished(mode, 0.95), recent).Delta)
}

func TestFallbackSessionsDelayRetreat(t *testing.T) {
	mode := dual(t)
	mode.Progression.FallbackSessions = 3
	p := PolicyFor(mode)

	var recent []model.SessionSummary
	for i := 0; i < 2; i++ {
		d := p.Next(finished(mode, 0.3), recent)
		require.Equal(t, 0, d.Delta, "session %d", i)
		recent = append(recent, model.SessionSummary{Mode: "dual", Level: mode.Level, Score: 0.3})
	}
	assert.Equal(t, -1, p.Next(finished(mode, 0.3), recent).Delta)

	// A decent session breaks the streak.
	recent = append(recent, model.SessionSummary{Mode: "dual", Level: mode.Level, Score: 0.6})
	assert.Equal(t, 0, p.Next(finished(mode, 0.3), recent).Delta)
}

func TestStrictPolicyPinsThresholds(t *testing.T) {
	mode, ok := preset.Lookup("jaeggi")
	require.True(t, ok)
	mode.Progression = model.Progression{Advance: 0.5, Retreat: 0.1, Cooldown: 5, FallbackSessions: 4}
	p := PolicyFor(mode)
	assert.Equal(t, model.JaeggiAdvance, p.Advance)
	assert.Equal(t, model.JaeggiRetreat, p.Retreat)
	assert.Zero(t, p.Cooldown)

	assert.Equal(t, 0, p.Next(finished(mode, 0.85), nil).Delta)
	assert.Equal(t, 1, p.Next(finished(mode, 0.90), nil).Delta)
	assert.Equal(t, -1, p.Next(finished(mode, 0.70), nil).Delta)
}

func TestStrictDeviationsHoldLevel(t *testing.T) {
	mode, ok := preset.Lookup("jaeggi")
	require.True(t, ok)
	st := finished(mode, 0.95)
	st.Incomplete = true
	st.Trials = 12
	d := PolicyFor(mode).Next(st, nil)
	assert.Equal(t, 0, d.Delta)
	require.Len(t, d.Deviations, 1)
	assert.Contains(t, d.Deviations[0], "12 of 20")

	st = finished(mode, 0.95)
	st.PlannedTrials = 24
	d = PolicyFor(mode).Next(st, nil)
	assert.Equal(t, 0, d.Delta)
	assert.NotEmpty(t, d.Deviations)

	st = finished(mode, 0.95)
	st.DisplayTicks = 29
	d = PolicyFor(mode).Next(st, nil)
	assert.Equal(t, 0, d.Delta)
	require.Len(t, d.Deviations, 1)
	assert.Contains(t, d.Deviations[0], "display time 29")
}

func TestNextSessionConfigRecomputesTrials(t *testing.T) {
	mode := dual(t)
	mode.TrialsBase = 20
	mode.TrialsFactor = 1
	mode.TrialsExponent = 2
	mode.Trials = mode.TrialsForLevel(mode.Level)
	require.Equal(t, 24, mode.Trials)

	next, d := NextSessionConfig(finished(mode, 0.9), mode, nil)
	assert.Equal(t, 1, d.Delta)
	assert.Equal(t, 3, next.Level)
	assert.Equal(t, 29, next.Trials)
	assert.Equal(t, 2, mode.Level, "input mode is not modified")
}

func TestNextSessionConfigDropsUnplayableLevel(t *testing.T) {
	mode := dual(t)
	mode.Trials = 4
	mode.Level = 3
	mode.MinMatchRatio = 0
	mode.MaxMatchRatio = 0.3
	next, d := NextSessionConfig(finished(mode, 1), mode, nil)
	assert.Equal(t, 0, d.Delta)
	assert.Equal(t, 3, next.Level)
}

func TestResume(t *testing.T) {
	mode := dual(t)
	history := []model.SessionSummary{
		{Mode: "dual", Level: 2, Delta: 1},
		{Mode: "audio", Level: 6, Delta: 0},
		{Mode: "dual", Level: 3, Delta: 1},
	}
	assert.Equal(t, 4, Resume(mode, history).Level)
	assert.Equal(t, mode.Level, Resume(mode, nil).Level)
}
