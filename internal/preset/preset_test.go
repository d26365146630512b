package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nback/internal/model"
)

func TestEveryPresetValidates(t *testing.T) {
	for _, name := range Names() {
		m, ok := Lookup(name)
		require.True(t, ok, name)
		assert.NoError(t, m.Validate(), name)
		assert.NotEmpty(t, Describe(name), name)
	}
}

func TestJaeggiIsStrict(t *testing.T) {
	m, ok := Lookup("jaeggi")
	require.True(t, ok)
	assert.True(t, m.Strict)
	assert.Equal(t, model.JaeggiTrials, m.Trials)
	assert.Zero(t, m.InterferenceChance)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("pentuple")
	assert.False(t, ok)
}
