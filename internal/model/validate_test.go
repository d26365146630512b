package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/preset"
)

func lookup(t *testing.T, name string) model.Mode {
	t.Helper()
	m, ok := preset.Lookup(name)
	require.True(t, ok, name)
	return m
}

func configError(t *testing.T, err error) *model.ConfigError {
	t.Helper()
	require.ErrorIs(t, err, model.ErrConfiguration)
	var cerr *model.ConfigError
	require.True(t, errors.As(err, &cerr))
	return cerr
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	mode := lookup(t, "dual")
	mode.Level = 0
	mode.MatchChance = 1.5
	mode.Modalities = append(mode.Modalities, "smell")
	mode.SoundSets = nil

	cerr := configError(t, mode.Validate())
	assert.True(t, cerr.Has("Level"))
	assert.True(t, cerr.Has("MatchChance"))
	assert.True(t, cerr.Has("Modalities[2]"))
	assert.True(t, cerr.Has("SoundSets"))
	assert.False(t, cerr.Has("Trials"))
	assert.Contains(t, cerr.Error(), "MatchChance")
}

func TestValidateCrossFieldRules(t *testing.T) {
	mode := lookup(t, "dual")
	mode.VariableN = true
	mode.Crab = true
	assert.True(t, configError(t, mode.Validate()).Has("Crab"))

	mode = lookup(t, "audio")
	mode.MultiStim = 2
	assert.True(t, configError(t, mode.Validate()).Has("MultiStim"))

	mode = lookup(t, "combination")
	mode.Modalities = []model.Modality{model.Combination}
	assert.True(t, configError(t, mode.Validate()).Has("Modalities"))

	mode = lookup(t, "combination")
	mode.SoundSets = []model.SoundSet{{Name: "pair", Symbols: []string{"a", "b", "c"}}}
	assert.True(t, configError(t, mode.Validate()).Has("SoundSets"))
}

func TestStrictPinsTiming(t *testing.T) {
	mode := lookup(t, "jaeggi")
	require.NoError(t, mode.Validate())

	mode.DisplayTicks = 6
	mode.TicksPerTrial = 25
	cerr := configError(t, mode.Validate())
	assert.True(t, cerr.Has("DisplayTicks"))
	assert.True(t, cerr.Has("TicksPerTrial"))

	mode = lookup(t, "jaeggi")
	mode.LeadInTicks = 0
	assert.NoError(t, mode.Validate())
}

func TestMatchBoundsClamp(t *testing.T) {
	mode := lookup(t, "dual")
	lower, upper := mode.MatchBounds(18)
	assert.Equal(t, 4, lower)
	assert.Equal(t, 6, upper)

	lower, upper = mode.MatchBounds(3)
	assert.Equal(t, 3, lower)
	assert.Equal(t, 3, upper)

	mode.MinMatches, mode.MaxMatches = 2, 40
	lower, upper = mode.MatchBounds(10)
	assert.Equal(t, 2, lower)
	assert.Equal(t, 10, upper)

	mode = lookup(t, "jaeggi")
	lower, upper = mode.MatchBounds(18)
	assert.Equal(t, model.JaeggiMatches, lower)
	assert.Equal(t, model.JaeggiMatches, upper)
}

func TestMinEligible(t *testing.T) {
	mode := lookup(t, "dual")
	mode.Level = 3
	assert.Equal(t, 17, mode.MinEligible())

	mode.Crab = true
	mode.Trials = 6
	// Backs 1, 3, 5, 1, 3, 5: only trials 3, 4 and 5 reach back far enough.
	assert.Equal(t, 3, mode.MinEligible())
}

func TestChannelsAndStreams(t *testing.T) {
	mode := lookup(t, "combination")
	assert.Equal(t, []model.Channel{model.VisVis, model.VisAudio, model.AudioVis, "audio"}, mode.Channels())
	assert.Equal(t, []model.Channel{model.Vis, "audio"}, mode.Streams())

	mode = lookup(t, "position")
	mode.MultiStim = 2
	assert.Equal(t, []model.Channel{"position", "position2"}, mode.Channels())
	assert.Equal(t, mode.Channels(), mode.Streams())

	assert.Equal(t, model.Position, model.PositionChannel(3).Modality())
	assert.Equal(t, model.Combination, model.AudioVis.Modality())
	cur, back := model.VisAudio.Streams()
	assert.Equal(t, model.Vis, cur)
	assert.Equal(t, model.Channel(model.Audio), back)
}
