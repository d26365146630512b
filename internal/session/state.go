package session

import "errors"

// State is the trial state machine state.
type State int

const (
	Idle State = iota
	AwaitingStimulus
	Presenting
	CollectingInput
	Scoring
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingStimulus:
		return "awaiting-stimulus"
	case Presenting:
		return "presenting"
	case CollectingInput:
		return "collecting-input"
	case Scoring:
		return "scoring"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidEventOrder rejects inputs outside the collecting window of a trial.
	ErrInvalidEventOrder = errors.New("input outside a collecting trial")
	// ErrDuplicateInput rejects a second input on a channel within one trial.
	ErrDuplicateInput = errors.New("channel already flagged this trial")
	// ErrOutOfWindow rejects tick offsets outside [0, ticks per trial).
	ErrOutOfWindow = errors.New("tick offset outside the trial window")
	// ErrUnknownChannel rejects inputs for channels the session does not score.
	ErrUnknownChannel = errors.New("channel not active in this session")
)

// Diagnostics counts generator fallbacks and rejected events.
type Diagnostics struct {
	Fallbacks    int
	Lures        int
	OutOfOrder   int
	Duplicates   int
	OutOfWindow  int
	Unknown      int
	IgnoredTicks int
}

// Rejected returns the total number of rejected inputs.
func (d Diagnostics) Rejected() int {
	return d.OutOfOrder + d.Duplicates + d.OutOfWindow + d.Unknown
}
