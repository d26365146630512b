// Package session runs the trial state machine of one N-back session. It is
// driven entirely by host-reported ticks and inputs and never reads the clock.
package session

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/alphabet"
	"github.com/verte-zerg/nback/internal/generator"
	"github.com/verte-zerg/nback/internal/match"
	"github.com/verte-zerg/nback/internal/model"
	"github.com/verte-zerg/nback/internal/stats"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Sessions are silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// Session is a single playthrough. It is not safe for concurrent use.
type Session struct {
	mode     model.Mode
	seed     int64
	seq      generator.Sequence
	channels []model.Channel
	streams  []model.Channel

	state  State
	paused bool
	clock  int
	trial  int

	inputs   map[model.Channel]model.Input
	accepted []model.Input
	results  []model.TrialResult

	diag  Diagnostics
	final *model.SessionStats
	log   zerolog.Logger
}

// Start validates the mode, generates the sequence and returns an idle
// session. An invalid mode returns a *model.ConfigError and no session.
func Start(mode model.Mode, seed int64, opts ...Option) (*Session, error) {
	s := &Session{
		mode:     mode,
		seed:     seed,
		channels: mode.Channels(),
		streams:  mode.Streams(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	seq, err := generator.Generate(mode, seed)
	if err != nil {
		s.log.Debug().Err(err).Str("mode", mode.Name).Msg("mode rejected")
		return nil, err
	}
	s.seq = seq
	s.diag.Fallbacks = seq.Fallbacks
	s.diag.Lures = seq.Lures
	if seq.Fallbacks > 0 {
		s.log.Debug().Int("fallbacks", seq.Fallbacks).Int64("seed", seed).Msg("sequence constraints relaxed")
	}
	s.log.Debug().
		Str("mode", mode.Name).
		Int("level", mode.Level).
		Int("trials", mode.Trials).
		Int64("seed", seed).
		Str("sound_set", seq.SoundSet.Name).
		Msg("session started")
	return s, nil
}

// Mode returns the mode the session was started with.
func (s *Session) Mode() model.Mode { return s.mode }

// Seed returns the session seed.
func (s *Session) Seed() int64 { return s.seed }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Paused reports whether the session is paused.
func (s *Session) Paused() bool { return s.paused }

// Channels returns the scored channels in presentation order.
func (s *Session) Channels() []model.Channel {
	return append([]model.Channel(nil), s.channels...)
}

// Streams returns the presented value streams in presentation order. They
// differ from Channels only in combination sessions.
func (s *Session) Streams() []model.Channel {
	return append([]model.Channel(nil), s.streams...)
}

// SoundSet returns the sound set chosen for the session.
func (s *Session) SoundSet() model.SoundSet { return s.seq.SoundSet }

// Trial returns the index of the trial being played and the planned total.
func (s *Session) Trial() (int, int) { return s.trial, s.mode.Trials }

// Back returns the back distance of the current trial.
func (s *Session) Back() int {
	if s.trial >= len(s.seq.Stimuli) {
		return s.mode.Level
	}
	return s.seq.Stimuli[s.trial].Back
}

// Clock returns the number of ticks processed.
func (s *Session) Clock() int { return s.clock }

// Offset returns the tick offset of the current trial, or -1 when no trial is
// collecting input.
func (s *Session) Offset() int {
	if s.state != CollectingInput {
		return -1
	}
	return s.clock - s.presentTick(s.trial)
}

// Results returns the scored trials so far.
func (s *Session) Results() []model.TrialResult {
	return append([]model.TrialResult(nil), s.results...)
}

// Diagnostics returns generator and event-order counters.
func (s *Session) Diagnostics() Diagnostics { return s.diag }

// Pause freezes the session. It reports false when there is nothing to pause.
func (s *Session) Pause() bool {
	if s.paused || s.state == Complete {
		return false
	}
	s.paused = true
	return true
}

// Resume continues a paused session.
func (s *Session) Resume() bool {
	if !s.paused {
		return false
	}
	s.paused = false
	return true
}

func (s *Session) presentTick(t int) int {
	return s.mode.LeadInTicks + t*s.mode.TicksPerTrial + 1
}

// OnTick advances the clock by elapsed ticks and returns the instructions due.
// Ticks are ignored while paused and after completion.
func (s *Session) OnTick(elapsed int) []model.Instruction {
	if elapsed <= 0 {
		return nil
	}
	if s.paused || s.state == Complete {
		s.diag.IgnoredTicks += elapsed
		return nil
	}
	var out []model.Instruction
	for i := 0; i < elapsed && s.state != Complete; i++ {
		s.clock++
		out = append(out, s.step()...)
	}
	return out
}

func (s *Session) step() []model.Instruction {
	var out []model.Instruction
	if s.state == Idle {
		s.state = AwaitingStimulus
	}
	if s.state == CollectingInput && s.clock == s.presentTick(s.trial+1) {
		s.state = Scoring
		out = append(out, s.score()...)
		s.trial++
		if s.trial == s.mode.Trials {
			s.finish(false)
			return out
		}
		s.state = AwaitingStimulus
	}
	if s.state == AwaitingStimulus && s.clock == s.presentTick(s.trial) {
		s.state = Presenting
		out = append(out, s.present()...)
		s.inputs = make(map[model.Channel]model.Input, len(s.channels))
		s.state = CollectingInput
	}
	return out
}

func (s *Session) present() []model.Instruction {
	stim := s.seq.Stimuli[s.trial]
	out := make([]model.Instruction, 0, len(s.streams))
	for _, ch := range s.streams {
		ins := model.Instruction{
			Kind:         model.InstructionPresent,
			Trial:        s.trial,
			Channel:      ch,
			Modality:     ch.Modality(),
			DisplayTicks: s.mode.DisplayTicks,
		}
		if ins.Modality == model.Arithmetic {
			ins.Value = stim.Operand
			ins.Symbol = stim.Op.Symbol()
		} else {
			sounds := s.seq.SoundSet
			if ins.Modality == model.Audio2 {
				sounds = s.seq.SoundSet2
			}
			ins.Value, _ = stim.Value(ch)
			ins.Symbol = alphabet.Symbol(ins.Modality, ins.Value, sounds)
		}
		out = append(out, ins)
	}
	return out
}

func (s *Session) score() []model.Instruction {
	res := match.Evaluate(s.trial, s.seq.Stimuli, s.inputs, s.channels)
	s.results = append(s.results, res)
	if !s.mode.Feedback {
		return nil
	}
	var out []model.Instruction
	for _, cr := range res.Channels {
		if cr.Outcome == model.TrueNegative {
			continue
		}
		out = append(out, model.Instruction{
			Kind:     model.InstructionFeedback,
			Trial:    res.Trial,
			Channel:  cr.Channel,
			Modality: cr.Channel.Modality(),
			Outcome:  cr.Outcome,
		})
	}
	return out
}

// OnInput records a match flag. It reports false for rejected inputs, which
// are no-ops.
func (s *Session) OnInput(ch model.Channel, offset int) bool {
	return s.TryInput(ch, offset) == nil
}

// OnAnswer records an arithmetic answer.
func (s *Session) OnAnswer(answer float64, offset int) bool {
	return s.TryAnswer(answer, offset) == nil
}

// TryInput is OnInput returning the rejection reason.
func (s *Session) TryInput(ch model.Channel, offset int) error {
	if ch.Modality() == model.Arithmetic {
		return s.reject(ch, offset, ErrUnknownChannel)
	}
	return s.accept(model.Input{Channel: ch, TickOffset: offset})
}

// TryAnswer is OnAnswer returning the rejection reason.
func (s *Session) TryAnswer(answer float64, offset int) error {
	return s.accept(model.Input{Channel: model.Channel(model.Arithmetic), TickOffset: offset, Answer: answer})
}

func (s *Session) accept(in model.Input) error {
	switch {
	case s.paused || s.state != CollectingInput:
		return s.reject(in.Channel, in.TickOffset, ErrInvalidEventOrder)
	case !lo.Contains(s.channels, in.Channel):
		return s.reject(in.Channel, in.TickOffset, ErrUnknownChannel)
	case in.TickOffset < 0 || in.TickOffset >= s.mode.TicksPerTrial:
		return s.reject(in.Channel, in.TickOffset, ErrOutOfWindow)
	}
	if _, dup := s.inputs[in.Channel]; dup {
		return s.reject(in.Channel, in.TickOffset, ErrDuplicateInput)
	}
	in.Trial = s.trial
	s.inputs[in.Channel] = in
	s.accepted = append(s.accepted, in)
	return nil
}

func (s *Session) reject(ch model.Channel, offset int, err error) error {
	switch err {
	case ErrInvalidEventOrder:
		s.diag.OutOfOrder++
	case ErrDuplicateInput:
		s.diag.Duplicates++
	case ErrOutOfWindow:
		s.diag.OutOfWindow++
	case ErrUnknownChannel:
		s.diag.Unknown++
	}
	s.log.Debug().
		Err(err).
		Str("channel", string(ch)).
		Int("offset", offset).
		Str("state", s.state.String()).
		Int("trial", s.trial).
		Msg("input rejected")
	return err
}

// End finalizes the session and returns its stats. Ending before the last
// trial is scored drops the trial in progress and flags the stats incomplete.
// Calling End again returns the same stats.
func (s *Session) End() model.SessionStats {
	if s.final == nil {
		s.finish(len(s.results) < s.mode.Trials)
	}
	return *s.final
}

func (s *Session) finish(incomplete bool) {
	s.state = Complete
	s.paused = false
	s.inputs = nil
	channels := stats.Aggregate(s.results, s.channels)
	st := model.SessionStats{
		Mode:          s.mode.Name,
		Level:         s.mode.Level,
		Trials:        len(s.results),
		PlannedTrials: s.mode.Trials,
		TicksPerTrial: s.mode.TicksPerTrial,
		DisplayTicks:  s.mode.DisplayTicks,
		Channels:      channels,
		Score:         stats.Composite(channels),
		Strict:        s.mode.Strict,
		Manual:        s.mode.Manual,
		Incomplete:    incomplete,
		Seed:          s.seed,
		SoundSet:      s.seq.SoundSet.Name,
		SoundSet2:     s.seq.SoundSet2.Name,
		Fallbacks:     s.seq.Fallbacks,
		Lures:         s.seq.Lures,
	}
	s.final = &st
	s.log.Debug().
		Int("trials", st.Trials).
		Float64("score", st.Score).
		Bool("incomplete", st.Incomplete).
		Int("rejected", s.diag.Rejected()).
		Msg("session finished")
}

// Record bundles the session for the persistence sink. The host supplies the
// wall-clock times.
func (s *Session) Record(startedAt, endedAt time.Time, delta int) model.SessionRecord {
	return model.SessionRecord{
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Stats:     s.End(),
		Delta:     delta,
		Sequence:  s.seq.Stimuli,
		Inputs:    append([]model.Input(nil), s.accepted...),
		Results:   s.Results(),
	}
}
