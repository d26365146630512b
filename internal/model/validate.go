package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	// ErrConfiguration is wrapped by every mode validation failure.
	ErrConfiguration = errors.New("invalid mode configuration")
	// ErrIncompleteSession marks stats of a session ended before its last trial.
	ErrIncompleteSession = errors.New("session ended before completion")
)

// Violation is one rejected configuration field.
type Violation struct {
	Field  string
	Reason string
}

// ConfigError lists every reason a mode was rejected.
type ConfigError struct {
	Violations []Violation
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, strings.Join(parts, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Has reports whether a violation was recorded for a field.
func (e *ConfigError) Has(field string) bool {
	return lo.ContainsBy(e.Violations, func(v Violation) bool { return v.Field == field })
}

// A combination trial excludes both back values and the other stream's value.
const minCombinationSymbols = 4

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func modeValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("modality", func(fl validator.FieldLevel) bool {
			return lo.Contains(AllModalities, Modality(fl.Field().String()))
		})
		_ = validate.RegisterValidation("operation", func(fl validator.FieldLevel) bool {
			switch Operation(fl.Field().String()) {
			case OpAdd, OpSubtract, OpMultiply, OpDivide:
				return true
			}
			return false
		})
	})
	return validate
}

// Validate checks field ranges and cross-field rules. Failures are returned as
// a *ConfigError; nothing is silently defaulted.
func (m Mode) Validate() error {
	var violations []Violation
	fieldViolations, err := structViolations(m)
	if err != nil {
		return err
	}
	violations = append(violations, fieldViolations...)
	if m.Has(Arithmetic) {
		arith, err := structViolations(m.Arithmetic)
		if err != nil {
			return err
		}
		for _, v := range arith {
			violations = append(violations, Violation{Field: "Arithmetic." + v.Field, Reason: v.Reason})
		}
		if len(m.Arithmetic.Operations) == 0 {
			violations = append(violations, Violation{Field: "Arithmetic.Operations", Reason: "at least one operation is required"})
		}
	}
	violations = append(violations, m.crossFieldViolations()...)
	if m.Strict {
		violations = append(violations, m.protocolViolations()...)
	}
	if len(violations) > 0 {
		return &ConfigError{Violations: violations}
	}
	return nil
}

func structViolations(s any) ([]Violation, error) {
	err := modeValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate mode: %w", err)
	}
	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += " " + fe.Param()
		}
		out = append(out, Violation{Field: field, Reason: reason})
	}
	return out, nil
}

func (m Mode) crossFieldViolations() []Violation {
	var out []Violation
	add := func(field, reason string) {
		out = append(out, Violation{Field: field, Reason: reason})
	}
	if m.Level >= m.Trials {
		add("Level", "must be less than Trials")
	}
	if m.Has(Audio) && len(m.SoundSets) == 0 {
		add("SoundSets", "audio modality needs at least one sound set")
	}
	if m.Has(Audio2) && len(m.SoundSets) == 0 {
		add("SoundSets", "audio2 modality needs at least one sound set")
	}
	if m.Has(Combination) {
		if !m.Has(Audio) {
			add("Modalities", "combination needs the audio modality")
		}
		for _, set := range m.SoundSets {
			if len(set.Symbols) < minCombinationSymbols {
				add("SoundSets", fmt.Sprintf("combination needs sound sets of at least %d symbols, %s has %d", minCombinationSymbols, set.Name, len(set.Symbols)))
			}
		}
	}
	if m.VariableN && m.Crab {
		add("Crab", "cannot be combined with VariableN")
	}
	if m.MultiStim > 1 && !m.Has(Position) {
		add("MultiStim", "requires the position modality")
	}
	if m.MaxMatches > 0 && m.MinMatches > m.MaxMatches {
		add("MinMatches", "must not exceed MaxMatches")
	}
	if m.MinMatchRatio > m.MaxMatchRatio {
		add("MinMatchRatio", "must not exceed MaxMatchRatio")
	}
	if m.Level >= 1 && m.Level < m.Trials && !m.Strict {
		eligible := m.MinEligible()
		switch {
		case eligible == 0:
			add("Trials", "no trial has a back reference")
		case m.MinMatches > eligible:
			add("MinMatches", fmt.Sprintf("only %d trials have a back reference", eligible))
		case m.Has(Combination):
			if lower, _ := m.MatchBounds(eligible); lower > eligible/2 {
				add("Trials", fmt.Sprintf("combination needs %d trials with a back reference, got %d", 2*lower, eligible))
			}
		}
	}
	return out
}

func (m Mode) protocolViolations() []Violation {
	var out []Violation
	add := func(field, reason string) {
		out = append(out, Violation{Field: field, Reason: reason})
	}
	if m.Trials != JaeggiTrials {
		add("Trials", fmt.Sprintf("strict protocol pins %d trials, got %d", JaeggiTrials, m.Trials))
	}
	if m.TicksPerTrial != JaeggiTicksPerTrial {
		add("TicksPerTrial", fmt.Sprintf("strict protocol pins %d ticks, got %d", JaeggiTicksPerTrial, m.TicksPerTrial))
	}
	if m.DisplayTicks != JaeggiDisplayTicks {
		add("DisplayTicks", fmt.Sprintf("strict protocol pins %d display ticks, got %d", JaeggiDisplayTicks, m.DisplayTicks))
	}
	if len(m.Modalities) != len(JaeggiModalities) || len(lo.Intersect(m.Modalities, JaeggiModalities)) != len(JaeggiModalities) {
		add("Modalities", "strict protocol pins position and audio")
	}
	if m.MultiStim != 1 {
		add("MultiStim", "strict protocol uses a single square")
	}
	if m.VariableN {
		add("VariableN", "not allowed in strict protocol")
	}
	if m.Crab {
		add("Crab", "not allowed in strict protocol")
	}
	if m.Manual {
		add("Manual", "strict protocol has no manual override")
	}
	if m.InterferenceChance != 0 {
		add("InterferenceChance", "strict protocol does not generate lures")
	}
	if (m.MinMatches != 0 && m.MinMatches != JaeggiMatches) || (m.MaxMatches != 0 && m.MaxMatches != JaeggiMatches) {
		add("MinMatches", fmt.Sprintf("strict protocol pins %d matches per channel", JaeggiMatches))
	}
	if m.Progression.Advance != JaeggiAdvance || m.Progression.Retreat != JaeggiRetreat {
		add("Progression", fmt.Sprintf("strict protocol pins thresholds %.2f/%.2f", JaeggiAdvance, JaeggiRetreat))
	}
	if m.Progression.Cooldown != 0 || m.Progression.FallbackSessions != 1 {
		add("Progression", "strict protocol has no cooldown or delayed fallback")
	}
	if need := 2*JaeggiMatches - JaeggiCoincident; m.Trials-m.Level < need {
		add("Level", fmt.Sprintf("strict protocol needs %d trials with a back reference", need))
	}
	return out
}
