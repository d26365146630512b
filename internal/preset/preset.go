// Package preset defines the named game modes.
package preset

import (
	"sort"

	"github.com/verte-zerg/nback/internal/alphabet"
	"github.com/verte-zerg/nback/internal/model"
)

// DefaultName is the mode played when none is selected.
const DefaultName = "dual"

var descriptions = map[string]string{
	"dual":            "position + audio",
	"position":        "position only",
	"audio":           "audio only",
	"color":           "position + color",
	"triple":          "position + audio + color",
	"quad":            "position + audio + color + image",
	"arithmetic":      "arithmetic only",
	"dual-arithmetic": "position + arithmetic",
	"dual-audio":      "position + two audio streams",
	"combination":     "vis letters + audio, matched within and across streams",
	"jaeggi":          "strict Jaeggi protocol (position + audio, 20 trials, fixed thresholds)",
}

var modalities = map[string][]model.Modality{
	"dual":            {model.Position, model.Audio},
	"position":        {model.Position},
	"audio":           {model.Audio},
	"color":           {model.Position, model.Color},
	"triple":          {model.Position, model.Audio, model.Color},
	"quad":            {model.Position, model.Audio, model.Color, model.Image},
	"arithmetic":      {model.Arithmetic},
	"dual-arithmetic": {model.Position, model.Arithmetic},
	"dual-audio":      {model.Position, model.Audio, model.Audio2},
	"combination":     {model.Combination, model.Audio},
	"jaeggi":          {model.Position, model.Audio},
}

// Default returns the default dual mode.
func Default() model.Mode {
	m, _ := Lookup(DefaultName)
	return m
}

// Lookup returns a preset by name.
func Lookup(name string) (model.Mode, bool) {
	mods, ok := modalities[name]
	if !ok {
		return model.Mode{}, false
	}
	letters, _ := alphabet.SoundSet(alphabet.DefaultSoundSet)
	m := model.Mode{
		Name:               name,
		Modalities:         append([]model.Modality(nil), mods...),
		Level:              2,
		Trials:             20,
		TicksPerTrial:      30,
		DisplayTicks:       5,
		LeadInTicks:        10,
		MultiStim:          1,
		Feedback:           true,
		MatchChance:        0.25,
		InterferenceChance: 0.125,
		MinMatchRatio:      0.2,
		MaxMatchRatio:      0.3,
		MaxRetries:         8,
		SoundSets:          []model.SoundSet{letters},
		Arithmetic: model.ArithmeticConfig{
			Operations:         []model.Operation{model.OpAdd, model.OpSubtract, model.OpMultiply, model.OpDivide},
			MaxNumber:          12,
			AcceptableDecimals: []float64{0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.75, 0.8, 0.9},
		},
		Progression: model.Progression{
			Advance:          0.80,
			Retreat:          0.50,
			Cooldown:         1,
			FallbackSessions: 1,
		},
	}
	if name == "dual-audio" {
		numbers, _ := alphabet.SoundSet("numbers")
		m.SoundSets = append(m.SoundSets, numbers)
	}
	if name == "jaeggi" {
		m.Strict = true
		m.Trials = model.JaeggiTrials
		m.TicksPerTrial = model.JaeggiTicksPerTrial
		m.DisplayTicks = model.JaeggiDisplayTicks
		m.InterferenceChance = 0
		m.Progression = model.Progression{
			Advance:          model.JaeggiAdvance,
			Retreat:          model.JaeggiRetreat,
			FallbackSessions: 1,
		}
	}
	return m, true
}

// Names lists presets in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(modalities))
	for name := range modalities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one-line description of a preset.
func Describe(name string) string {
	return descriptions[name]
}
