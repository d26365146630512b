// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Modality is a kind of cue a stimulus may carry.
type Modality string

const (
	Position    Modality = "position"
	Audio       Modality = "audio"
	Audio2      Modality = "audio2"
	Color       Modality = "color"
	Image       Modality = "image"
	Arithmetic  Modality = "arithmetic"
	Combination Modality = "combination"
)

// AllModalities lists modalities in presentation order.
var AllModalities = []Modality{Position, Audio, Audio2, Color, Image, Arithmetic, Combination}

// Alphabet sizes for the visual modalities.
const (
	GridCells  = 9
	ColorCount = 8
	ImageCount = 8
)

// Channel is one scored stream of values within a session. Every modality has
// a channel named after it; multi-stimulus sessions add position2..position4.
// The combination modality scores three channels against the vis and audio
// streams instead.
type Channel string

// Combination channels and the visual letter stream they read.
const (
	Vis      Channel = "vis"
	VisVis   Channel = "visvis"
	VisAudio Channel = "visaudio"
	AudioVis Channel = "audiovis"
)

// PositionChannel returns the channel for the i-th simultaneous square.
func PositionChannel(i int) Channel {
	if i <= 0 {
		return Channel(Position)
	}
	return Channel(fmt.Sprintf("%s%d", Position, i+1))
}

// Modality returns the modality a channel belongs to.
func (c Channel) Modality() Modality {
	switch c {
	case Vis, VisVis, VisAudio, AudioVis:
		return Combination
	}
	if strings.HasPrefix(string(c), string(Position)) {
		return Position
	}
	return Modality(c)
}

// Streams returns the value stream a channel reads on the current trial and
// the stream it is compared against on the back trial. Plain channels compare
// a stream with itself.
func (c Channel) Streams() (cur, back Channel) {
	switch c {
	case VisVis:
		return Vis, Vis
	case VisAudio:
		return Vis, Channel(Audio)
	case AudioVis:
		return Channel(Audio), Vis
	default:
		return c, c
	}
}

// Operation is an arithmetic operator.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// Symbol returns the operator glyph.
func (o Operation) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "x"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

// Apply computes a OP b. It reports false for unknown operators and division by zero.
func (o Operation) Apply(a, b int) (float64, bool) {
	switch o {
	case OpAdd:
		return float64(a + b), true
	case OpSubtract:
		return float64(a - b), true
	case OpMultiply:
		return float64(a * b), true
	case OpDivide:
		if b == 0 {
			return 0, false
		}
		return float64(a) / float64(b), true
	default:
		return 0, false
	}
}

// SoundSet is a named audio alphabet.
type SoundSet struct {
	Name    string   `validate:"required"`
	Symbols []string `validate:"min=2,unique"`
}

// Stimulus is the content of one trial. Values is keyed by value stream, see
// Channel.Streams. It is built once by the generator and must not be modified
// afterwards.
type Stimulus struct {
	Trial   int             `msgpack:"trial" json:"trial"`
	Back    int             `msgpack:"back" json:"back"`
	Values  map[Channel]int `msgpack:"values" json:"values"`
	Op      Operation       `msgpack:"op,omitempty" json:"op,omitempty"`
	Operand int             `msgpack:"operand,omitempty" json:"operand,omitempty"`
}

// Value returns the value shown on a channel.
func (s Stimulus) Value(ch Channel) (int, bool) {
	v, ok := s.Values[ch]
	return v, ok
}

// Matches reports whether ch matches between the stimulus and its back
// stimulus ref.
func (s Stimulus) Matches(ref Stimulus, ch Channel) bool {
	curStream, backStream := ch.Streams()
	cur, ok := s.Values[curStream]
	if !ok {
		return false
	}
	back, ok := ref.Values[backStream]
	return ok && cur == back
}

// HasReference reports whether the trial has a stimulus Back trials earlier.
func (s Stimulus) HasReference() bool {
	return s.Back > 0 && s.Trial >= s.Back
}

// InstructionKind distinguishes host instructions.
type InstructionKind int

const (
	// InstructionPresent asks the host to show or play a cue.
	InstructionPresent InstructionKind = iota
	// InstructionFeedback reports a scored channel at the end of a trial.
	InstructionFeedback
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionPresent:
		return "present"
	case InstructionFeedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Instruction is a pure description of something the host should render or play.
type Instruction struct {
	Kind         InstructionKind
	Trial        int
	Channel      Channel
	Modality     Modality
	Value        int
	Symbol       string
	DisplayTicks int
	Outcome      Outcome
}

// Input is one accepted user action.
type Input struct {
	Channel    Channel `msgpack:"channel" json:"channel"`
	Trial      int     `msgpack:"trial" json:"trial"`
	TickOffset int     `msgpack:"offset" json:"offset"`
	Answer     float64 `msgpack:"answer,omitempty" json:"answer,omitempty"`
}

// Outcome classifies a channel for one trial.
type Outcome int

const (
	TrueNegative Outcome = iota
	TruePositive
	FalsePositive
	FalseNegative
)

func (o Outcome) String() string {
	switch o {
	case TrueNegative:
		return "true-negative"
	case TruePositive:
		return "hit"
	case FalsePositive:
		return "false-alarm"
	case FalseNegative:
		return "miss"
	default:
		return "unknown"
	}
}

// Correct reports whether the outcome counts toward accuracy.
func (o Outcome) Correct() bool {
	return o == TruePositive || o == TrueNegative
}

// ChannelResult is the scored outcome of one channel in one trial.
type ChannelResult struct {
	Channel       Channel `msgpack:"channel" json:"channel"`
	Reference     bool    `msgpack:"reference" json:"reference"`
	Match         bool    `msgpack:"match" json:"match"`
	Flagged       bool    `msgpack:"flagged" json:"flagged"`
	Outcome       Outcome `msgpack:"outcome" json:"outcome"`
	ReactionTicks int     `msgpack:"rt" json:"reaction_ticks"`
	Expected      float64 `msgpack:"expected,omitempty" json:"expected,omitempty"`
	Answer        float64 `msgpack:"answer,omitempty" json:"answer,omitempty"`
}

// Defined reports whether the outcome enters the accuracy ratio: the trial had
// a back reference, or the user flagged it anyway.
func (r ChannelResult) Defined() bool {
	return r.Reference || r.Flagged
}

// TrialResult holds the per-channel outcomes of one trial.
type TrialResult struct {
	Trial    int             `msgpack:"trial" json:"trial"`
	Back     int             `msgpack:"back" json:"back"`
	Channels []ChannelResult `msgpack:"channels" json:"channels"`
}

// For returns the result for a channel.
func (r TrialResult) For(ch Channel) (ChannelResult, bool) {
	for _, c := range r.Channels {
		if c.Channel == ch {
			return c, true
		}
	}
	return ChannelResult{}, false
}

// ChannelStats aggregates one channel over a session.
type ChannelStats struct {
	Channel           Channel  `json:"channel"`
	Modality          Modality `json:"modality"`
	TruePositive      int      `json:"true_positive"`
	TrueNegative      int      `json:"true_negative"`
	FalsePositive     int      `json:"false_positive"`
	FalseNegative     int      `json:"false_negative"`
	Defined           int      `json:"defined"`
	Accuracy          float64  `json:"accuracy"`
	MeanReactionTicks float64  `json:"mean_reaction_ticks"`
}

// Matches returns the number of true N-back matches seen on the channel.
func (c ChannelStats) Matches() int {
	return c.TruePositive + c.FalseNegative
}

// SessionStats captures a finished (or interrupted) session.
type SessionStats struct {
	Mode          string         `json:"mode"`
	Level         int            `json:"level"`
	Trials        int            `json:"trials"`
	PlannedTrials int            `json:"planned_trials"`
	TicksPerTrial int            `json:"ticks_per_trial"`
	DisplayTicks  int            `json:"display_ticks"`
	Channels      []ChannelStats `json:"channels"`
	Score         float64        `json:"score"`
	Strict        bool           `json:"strict"`
	Manual        bool           `json:"manual"`
	Incomplete    bool           `json:"incomplete"`
	Seed          int64          `json:"seed"`
	SoundSet      string         `json:"sound_set"`
	SoundSet2     string         `json:"sound_set2,omitempty"`
	Fallbacks     int            `json:"fallbacks"`
	Lures         int            `json:"lures"`
}

// Channel returns stats for one channel.
func (s SessionStats) Channel(ch Channel) (ChannelStats, bool) {
	for _, c := range s.Channels {
		if c.Channel == ch {
			return c, true
		}
	}
	return ChannelStats{}, false
}

// SessionRecord is everything the persistence sink stores for a session.
type SessionRecord struct {
	StartedAt time.Time
	EndedAt   time.Time
	Stats     SessionStats
	Delta     int
	Sequence  []Stimulus
	Inputs    []Input
	Results   []TrialResult
}

// SessionSummary is the history entry the level policy and reports read.
type SessionSummary struct {
	SessionID  int64     `json:"session_id"`
	EndedAt    time.Time `json:"ended_at"`
	Mode       string    `json:"mode"`
	Level      int       `json:"level"`
	Trials     int       `json:"trials"`
	Score      float64   `json:"score"`
	Delta      int       `json:"delta"`
	Strict     bool      `json:"strict"`
	Manual     bool      `json:"manual"`
	Incomplete bool      `json:"incomplete"`
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}
