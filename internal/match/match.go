// Package match scores one trial against its back reference.
package match

import (
	"math"

	"github.com/verte-zerg/nback/internal/model"
)

// AnswerTolerance is the largest accepted distance between an arithmetic answer
// and the expected result.
const AnswerTolerance = 0.01

// Evaluate scores trial t on every channel. inputs holds the accepted inputs of
// trial t, at most one per channel.
func Evaluate(t int, stimuli []model.Stimulus, inputs map[model.Channel]model.Input, channels []model.Channel) model.TrialResult {
	stim := stimuli[t]
	res := model.TrialResult{
		Trial:    t,
		Back:     stim.Back,
		Channels: make([]model.ChannelResult, 0, len(channels)),
	}
	for _, ch := range channels {
		in, flagged := inputs[ch]
		cr := model.ChannelResult{
			Channel:   ch,
			Reference: stim.HasReference(),
			Flagged:   flagged,
		}
		if flagged {
			cr.ReactionTicks = in.TickOffset
		}
		if ch.Modality() == model.Arithmetic {
			scoreAnswer(&cr, stimuli, stim, in)
		} else {
			if cr.Reference {
				cr.Match = stim.Matches(stimuli[t-stim.Back], ch)
			}
			cr.Outcome = Classify(cr.Match, cr.Flagged)
		}
		res.Channels = append(res.Channels, cr)
	}
	return res
}

// Classify maps a (match, flagged) pair to its outcome.
func Classify(match, flagged bool) model.Outcome {
	switch {
	case match && flagged:
		return model.TruePositive
	case match:
		return model.FalseNegative
	case flagged:
		return model.FalsePositive
	default:
		return model.TrueNegative
	}
}

// Expected returns the arithmetic answer trial t asks for.
func Expected(stimuli []model.Stimulus, t int) (float64, bool) {
	stim := stimuli[t]
	if !stim.HasReference() {
		return 0, false
	}
	return stim.Op.Apply(stimuli[t-stim.Back].Operand, stim.Operand)
}

// Every arithmetic trial with a reference asks for an answer, so it is scored
// like a match: a correct answer is a hit, a wrong one a false alarm, none a miss.
func scoreAnswer(cr *model.ChannelResult, stimuli []model.Stimulus, stim model.Stimulus, in model.Input) {
	expected, ok := Expected(stimuli, stim.Trial)
	if !ok {
		cr.Outcome = Classify(false, cr.Flagged)
		if cr.Flagged {
			cr.Answer = in.Answer
		}
		return
	}
	cr.Match = true
	cr.Expected = expected
	switch {
	case !cr.Flagged:
		cr.Outcome = model.FalseNegative
	case math.Abs(in.Answer-expected) <= AnswerTolerance:
		cr.Answer = in.Answer
		cr.Outcome = model.TruePositive
	default:
		cr.Answer = in.Answer
		cr.Outcome = model.FalsePositive
	}
}
