// Package level decides the N-back level of the next session.
package level

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/model"
)

// MinLevel is the lowest playable level.
const MinLevel = 1

// Policy holds the thresholds the decision is made with.
type Policy struct {
	Advance          float64
	Retreat          float64
	Cooldown         int
	FallbackSessions int
	Strict           bool
}

// PolicyFor builds the policy of a mode. Strict modes always get the pinned
// protocol thresholds, whatever the mode carries.
func PolicyFor(mode model.Mode) Policy {
	if mode.Strict {
		return Policy{
			Advance:          model.JaeggiAdvance,
			Retreat:          model.JaeggiRetreat,
			FallbackSessions: 1,
			Strict:           true,
		}
	}
	p := mode.Progression
	return Policy{
		Advance:          p.Advance,
		Retreat:          p.Retreat,
		Cooldown:         p.Cooldown,
		FallbackSessions: max(1, p.FallbackSessions),
	}
}

// Decision is the outcome of the policy for one session.
type Decision struct {
	Delta     int
	Rationale string
	// Deviations lists why a strict session could not count toward progression.
	Deviations []string
}

// Next decides the level change after a session. recent holds the earlier
// sessions of the same mode, oldest first, and does not include cur.
func (p Policy) Next(cur model.SessionStats, recent []model.SessionSummary) Decision {
	if p.Strict {
		if dev := deviations(cur); len(dev) > 0 {
			return Decision{Rationale: "protocol deviation, level held", Deviations: dev}
		}
	} else {
		switch {
		case cur.Incomplete:
			return Decision{Rationale: "session incomplete, level held"}
		case cur.Manual:
			return Decision{Rationale: "manual mode, level held"}
		}
	}

	score := cur.Score
	switch {
	case score >= p.Advance:
		if p.coolingDown(recent) {
			return Decision{Rationale: fmt.Sprintf("score %.0f%% but cooling down after a retreat", score*100)}
		}
		return Decision{Delta: 1, Rationale: fmt.Sprintf("score %.0f%% reached %.0f%%", score*100, p.Advance*100)}
	case score < p.Retreat:
		if cur.Level <= MinLevel {
			return Decision{Rationale: fmt.Sprintf("score %.0f%% at the lowest level", score*100)}
		}
		streak := 1 + p.poorStreak(cur.Level, recent)
		if streak < p.FallbackSessions {
			return Decision{Rationale: fmt.Sprintf("score %.0f%%, %d of %d poor sessions before retreat", score*100, streak, p.FallbackSessions)}
		}
		return Decision{Delta: -1, Rationale: fmt.Sprintf("score %.0f%% below %.0f%%", score*100, p.Retreat*100)}
	default:
		return Decision{Rationale: fmt.Sprintf("score %.0f%%, level held", score*100)}
	}
}

func deviations(cur model.SessionStats) []string {
	var out []string
	if cur.Incomplete {
		out = append(out, fmt.Sprintf("session ended after %d of %d trials", cur.Trials, cur.PlannedTrials))
	}
	if cur.PlannedTrials != model.JaeggiTrials {
		out = append(out, fmt.Sprintf("trial count %d differs from %d", cur.PlannedTrials, model.JaeggiTrials))
	}
	if cur.TicksPerTrial != model.JaeggiTicksPerTrial {
		out = append(out, fmt.Sprintf("trial length %d ticks differs from %d", cur.TicksPerTrial, model.JaeggiTicksPerTrial))
	}
	if cur.DisplayTicks != model.JaeggiDisplayTicks {
		out = append(out, fmt.Sprintf("display time %d ticks differs from %d", cur.DisplayTicks, model.JaeggiDisplayTicks))
	}
	if cur.Manual {
		out = append(out, "manual mode")
	}
	return out
}

func (p Policy) coolingDown(recent []model.SessionSummary) bool {
	if p.Cooldown <= 0 {
		return false
	}
	window := recent[max(0, len(recent)-p.Cooldown):]
	return lo.SomeBy(window, func(s model.SessionSummary) bool { return s.Delta < 0 })
}

// poorStreak counts the trailing sessions at the level that scored below the
// retreat threshold without changing level.
func (p Policy) poorStreak(level int, recent []model.SessionSummary) int {
	n := 0
	for i := len(recent) - 1; i >= 0; i-- {
		s := recent[i]
		if s.Incomplete || s.Manual {
			continue
		}
		if s.Level != level || s.Delta != 0 || s.Score >= p.Retreat {
			break
		}
		n++
	}
	return n
}

// NextSessionConfig applies the policy to the finished session and returns the
// mode of the next one. A level change that would produce an invalid mode is
// dropped.
func NextSessionConfig(prev model.SessionStats, mode model.Mode, recent []model.SessionSummary) (model.Mode, Decision) {
	d := PolicyFor(mode).Next(prev, recent)
	if d.Delta == 0 {
		return mode, d
	}
	next := WithLevel(mode, mode.Level+d.Delta)
	if err := next.Validate(); err != nil {
		d.Rationale = fmt.Sprintf("%s; N=%d is not playable with this mode, level held", d.Rationale, next.Level)
		d.Delta = 0
		return mode, d
	}
	return next, d
}

// WithLevel returns mode at level, recomputing the trial count when the mode
// derives it from the level.
func WithLevel(mode model.Mode, level int) model.Mode {
	next := mode
	next.Level = max(MinLevel, level)
	next.Trials = next.TrialsForLevel(next.Level)
	return next
}

// Resume restores the level after the latest stored session of the mode.
// history is oldest first.
func Resume(mode model.Mode, history []model.SessionSummary) model.Mode {
	last, err := lo.Last(lo.Filter(history, func(s model.SessionSummary, _ int) bool { return s.Mode == mode.Name }))
	if err != nil {
		return mode
	}
	next := WithLevel(mode, last.Level+last.Delta)
	if next.Validate() != nil {
		return mode
	}
	return next
}
