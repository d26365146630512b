package model

import (
	"math"

	"github.com/samber/lo"
)

// Jaeggi protocol constants. Strict sessions must use exactly these values.
const (
	JaeggiTrials        = 20
	JaeggiTicksPerTrial = 30
	JaeggiDisplayTicks  = 5
	JaeggiMatches       = 6
	JaeggiCoincident    = 2
	JaeggiAdvance       = 0.90
	JaeggiRetreat       = 0.75
)

// JaeggiModalities is the pinned modality set of the strict protocol.
var JaeggiModalities = []Modality{Position, Audio}

// ArithmeticConfig controls the arithmetic modality.
type ArithmeticConfig struct {
	Operations         []Operation `validate:"omitempty,unique,dive,operation"`
	MaxNumber          int         `validate:"min=1"`
	Negatives          bool
	AcceptableDecimals []float64 `validate:"dive,gte=0,lt=1"`
}

// Progression holds the level policy thresholds.
type Progression struct {
	Advance          float64 `validate:"gt=0,lte=1"`
	Retreat          float64 `validate:"gte=0,ltfield=Advance"`
	Cooldown         int     `validate:"min=0"`
	FallbackSessions int     `validate:"min=1"`
}

// Mode is the complete configuration of a session. Named game modes are
// presets of this struct, not types.
type Mode struct {
	Name          string
	Modalities    []Modality `validate:"required,min=1,unique,dive,modality"`
	Level         int        `validate:"min=1"`
	Trials        int        `validate:"min=2"`
	TicksPerTrial int        `validate:"min=2"`
	DisplayTicks  int        `validate:"min=1,ltefield=TicksPerTrial"`
	LeadInTicks   int        `validate:"min=0"`
	MultiStim     int        `validate:"min=1,max=4"`

	Strict    bool
	VariableN bool
	Crab      bool
	Manual    bool
	Feedback  bool

	MatchChance        float64 `validate:"gte=0,lte=1"`
	InterferenceChance float64 `validate:"gte=0,lte=1"`
	MinMatches         int     `validate:"min=0"`
	MaxMatches         int     `validate:"min=0"`
	MinMatchRatio      float64 `validate:"gte=0,lte=1"`
	MaxMatchRatio      float64 `validate:"gte=0,lte=1"`
	MaxRetries         int     `validate:"min=1"`

	// TrialsFactor > 0 makes the trial count follow the level:
	// TrialsBase + TrialsFactor * Level^TrialsExponent.
	TrialsBase     int     `validate:"min=0"`
	TrialsFactor   int     `validate:"min=0"`
	TrialsExponent float64 `validate:"gte=0"`

	SoundSets   []SoundSet       `validate:"dive"`
	Arithmetic  ArithmeticConfig `validate:"-"`
	Progression Progression
}

// Channels expands the modality set into scored channels.
func (m Mode) Channels() []Channel {
	out := make([]Channel, 0, len(m.Modalities)+m.MultiStim)
	for _, mod := range m.Modalities {
		if mod == Position {
			count := m.MultiStim
			if count < 1 {
				count = 1
			}
			for i := 0; i < count; i++ {
				out = append(out, PositionChannel(i))
			}
			continue
		}
		if mod == Combination {
			out = append(out, VisVis, VisAudio, AudioVis)
			continue
		}
		out = append(out, Channel(mod))
	}
	return out
}

// Streams lists the value streams the scored channels read, in presentation
// order. The arithmetic channel is its own stream.
func (m Mode) Streams() []Channel {
	var out []Channel
	for _, ch := range m.Channels() {
		cur, back := ch.Streams()
		out = append(out, cur, back)
	}
	return lo.Uniq(out)
}

// Has reports whether the modality is active.
func (m Mode) Has(mod Modality) bool {
	return lo.Contains(m.Modalities, mod)
}

// CrabBack is the back distance of trial t in crab mode.
func CrabBack(t, level int) int {
	if level <= 0 {
		return 1
	}
	return 1 + 2*(t%level)
}

// MinEligible returns the number of trials guaranteed to have a back reference.
// Variable-N distances never exceed Level, so T-Level is a lower bound there.
func (m Mode) MinEligible() int {
	if m.Crab {
		n := 0
		for t := 0; t < m.Trials; t++ {
			if t >= CrabBack(t, m.Level) {
				n++
			}
		}
		return n
	}
	if m.Trials <= m.Level {
		return 0
	}
	return m.Trials - m.Level
}

// MatchBounds returns the [min, max] number of N-back matches each channel must
// contain given the number of trials with a back reference.
func (m Mode) MatchBounds(eligible int) (int, int) {
	if m.Strict {
		return JaeggiMatches, JaeggiMatches
	}
	lower, upper := m.MinMatches, m.MaxMatches
	if lower == 0 && upper == 0 {
		lower = int(math.Ceil(float64(m.Trials)*m.MinMatchRatio - 1e-9))
		upper = int(math.Floor(float64(m.Trials)*m.MaxMatchRatio + 1e-9))
	}
	if upper <= 0 || upper > eligible {
		upper = eligible
	}
	if lower > upper {
		lower = upper
	}
	if lower < 0 {
		lower = 0
	}
	return lower, upper
}

// TrialsForLevel returns the trial count for a level under the trial formula,
// or the fixed Trials value when no factor is configured.
func (m Mode) TrialsForLevel(level int) int {
	if m.Strict || m.TrialsFactor <= 0 {
		return m.Trials
	}
	exp := m.TrialsExponent
	if exp == 0 {
		exp = 1
	}
	return m.TrialsBase + int(math.Round(float64(m.TrialsFactor)*math.Pow(float64(level), exp)))
}
