// Package generator builds seeded stimulus sequences.
package generator

import (
	"math"
	"math/rand"

	"github.com/samber/lo"

	"github.com/verte-zerg/nback/internal/alphabet"
	"github.com/verte-zerg/nback/internal/model"
)

// Sequence is the full stimulus sequence of one session.
type Sequence struct {
	Stimuli  []model.Stimulus
	SoundSet model.SoundSet
	// SoundSet2 voices the audio2 stream.
	SoundSet2 model.SoundSet
	// Fallbacks counts constraint retries that ran out and were resolved by a
	// relaxed draw.
	Fallbacks int
	Lures     int
}

// Matches counts true N-back matches on a channel.
func (s Sequence) Matches(ch model.Channel) int {
	n := 0
	for _, stim := range s.Stimuli {
		if stim.HasReference() && stim.Matches(s.Stimuli[stim.Trial-stim.Back], ch) {
			n++
		}
	}
	return n
}

// Generator produces randomized stimulus sequences from a single seeded source.
type Generator struct {
	rnd       *rand.Rand
	mode      model.Mode
	sounds    model.SoundSet
	sounds2   model.SoundSet
	fallbacks int
	lures     int
}

// New returns a Generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate validates the mode and builds its sequence. Identical mode and seed
// always produce identical sequences.
func Generate(mode model.Mode, seed int64) (Sequence, error) {
	return New(seed).Generate(mode)
}

// Generate builds a sequence for the mode using the generator's source.
func (g *Generator) Generate(mode model.Mode) (Sequence, error) {
	if err := mode.Validate(); err != nil {
		return Sequence{}, err
	}
	g.mode = mode
	g.fallbacks = 0
	g.lures = 0
	g.pickSoundSets()

	backs := g.backs()
	eligible := make([]int, 0, mode.Trials)
	for t, back := range backs {
		if t >= back {
			eligible = append(eligible, t)
		}
	}

	notArithmetic := func(ch model.Channel, _ int) bool {
		return ch.Modality() != model.Arithmetic
	}
	channels := lo.Filter(mode.Channels(), notArithmetic)
	streams := lo.Filter(mode.Streams(), notArithmetic)
	plans := g.plans(channels, eligible)

	stimuli := make([]model.Stimulus, mode.Trials)
	for t := range stimuli {
		stimuli[t] = model.Stimulus{
			Trial:  t,
			Back:   backs[t],
			Values: make(map[model.Channel]int, len(streams)),
		}
		g.fillTrial(stimuli, t, channels, streams, plans)
		g.reverse(stimuli, t, plans)
		if mode.Has(model.Arithmetic) {
			g.fillArithmetic(stimuli, t)
		}
	}

	return Sequence{
		Stimuli:   stimuli,
		SoundSet:  g.sounds,
		SoundSet2: g.sounds2,
		Fallbacks: g.fallbacks,
		Lures:     g.lures,
	}, nil
}

// pickSoundSets draws the session sound set, and for audio2 a second one that
// differs from it whenever more than one is configured.
func (g *Generator) pickSoundSets() {
	sets := g.mode.SoundSets
	g.sounds, g.sounds2 = model.SoundSet{}, model.SoundSet{}
	if len(sets) == 0 {
		return
	}
	first := g.rnd.Intn(len(sets))
	g.sounds = sets[first]
	if !g.mode.Has(model.Audio2) {
		return
	}
	g.sounds2 = g.sounds
	if len(sets) > 1 {
		second := g.rnd.Intn(len(sets) - 1)
		if second >= first {
			second++
		}
		g.sounds2 = sets[second]
	}
}

// backs returns the back distance of every trial.
func (g *Generator) backs() []int {
	m := g.mode
	out := make([]int, m.Trials)
	for t := range out {
		switch {
		case m.Crab:
			out[t] = model.CrabBack(t, m.Level)
		case m.VariableN && t >= m.Level:
			out[t] = g.variableBack(m.Level)
		default:
			out[t] = m.Level
		}
	}
	return out
}

// variableBack draws floor(Beta(n/2, 1) * n) + 1. Beta(a, 1) has the inverse
// CDF u^(1/a).
func (g *Generator) variableBack(n int) int {
	x := math.Pow(g.rnd.Float64(), 2/float64(n))
	back := int(x*float64(n)) + 1
	if back > n {
		back = n
	}
	return back
}

func (g *Generator) fillTrial(stimuli []model.Stimulus, t int, channels, streams []model.Channel, plans map[model.Channel][]bool) {
	cur := &stimuli[t]

	// source maps a stream to the planned channel that copies into it.
	source := make(map[model.Channel]model.Channel, len(streams))
	if cur.HasReference() {
		for _, ch := range channels {
			if planned(plans, ch, t) {
				s, _ := ch.Streams()
				source[s] = ch
			}
		}
	}

	// Matches first so copied values reserve their squares and letters.
	ordered := make([]model.Channel, 0, len(streams))
	for _, s := range streams {
		if _, ok := source[s]; ok {
			ordered = append(ordered, s)
		}
	}
	for _, s := range streams {
		if _, ok := source[s]; !ok {
			ordered = append(ordered, s)
		}
	}

	taken := make(map[string][]int, 2)
	for _, s := range ordered {
		group := g.group(s)
		var soft []int
		if t > 0 && g.mode.Level != 1 {
			soft = append(soft, stimuli[t-1].Values[s])
		}
		hard := append([]int(nil), taken[group]...)

		var value int
		switch ch, ok := source[s]; {
		case !cur.HasReference():
			value = g.fresh(g.size(s), hard, soft)
		case ok:
			_, back := ch.Streams()
			value = stimuli[t-cur.Back].Values[back]
		default:
			hard = append(hard, backValues(stimuli, t, s, channels)...)
			if lure, ok := g.lure(stimuli, t, s, hard, soft); ok {
				value = lure
				g.lures++
			} else {
				value = g.fresh(g.size(s), hard, soft)
			}
		}
		cur.Values[s] = value
		if group != "" {
			taken[group] = append(taken[group], value)
		}
	}
}

// backValues returns the back values every channel writing stream s is
// compared against, which s must avoid on an unplanned trial.
func backValues(stimuli []model.Stimulus, t int, s model.Channel, channels []model.Channel) []int {
	ref := stimuli[t-stimuli[t].Back]
	var out []int
	for _, ch := range channels {
		curStream, backStream := ch.Streams()
		if curStream == s {
			out = append(out, ref.Values[backStream])
		}
	}
	return out
}

// group names the streams whose values must differ within a trial: the
// squares of a multi-stimulus session, and the vis and audio letters of a
// combination session.
func (g *Generator) group(s model.Channel) string {
	switch {
	case s.Modality() == model.Position:
		return "position"
	case g.mode.Has(model.Combination) && (s == model.Vis || s == model.Channel(model.Audio)):
		return "letters"
	default:
		return ""
	}
}

func (g *Generator) size(s model.Channel) int {
	if s.Modality() == model.Audio2 {
		return alphabet.Size(model.Audio2, g.sounds2)
	}
	return alphabet.Size(s.Modality(), g.sounds)
}

// reverse rotates the squares of a multi-stimulus trial with no planned
// position match, so that each square shows another square's N-back position.
func (g *Generator) reverse(stimuli []model.Stimulus, t int, plans map[model.Channel][]bool) {
	k := g.mode.MultiStim
	cur := &stimuli[t]
	if k < 2 || g.mode.Strict || g.mode.InterferenceChance <= 0 || !cur.HasReference() {
		return
	}
	for i := 0; i < k; i++ {
		if planned(plans, model.PositionChannel(i), t) {
			return
		}
	}
	if g.rnd.Float64() >= g.mode.InterferenceChance/3 {
		return
	}
	offset := 1 + g.rnd.Intn(k-1)
	ref := stimuli[t-cur.Back]
	for i := 0; i < k; i++ {
		cur.Values[model.PositionChannel(i)] = ref.Values[model.PositionChannel((i+offset)%k)]
	}
	g.lures++
}

func planned(plans map[model.Channel][]bool, ch model.Channel, t int) bool {
	plan := plans[ch]
	return t < len(plan) && plan[t]
}

// lure copies the value seen at N-1, N+1 or 2N trials back on the same stream,
// as long as it differs from the N-back value. 1-back trials get no lures.
func (g *Generator) lure(stimuli []model.Stimulus, t int, s model.Channel, hard, soft []int) (int, bool) {
	back := stimuli[t].Back
	if g.mode.Strict || g.mode.InterferenceChance <= 0 || back <= 1 {
		return 0, false
	}
	if g.rnd.Float64() >= g.mode.InterferenceChance {
		return 0, false
	}
	offsets := []int{-1, 1, back}
	if back < 3 {
		offsets = offsets[1:]
	}
	g.rnd.Shuffle(len(offsets), func(i, j int) { offsets[i], offsets[j] = offsets[j], offsets[i] })
	for _, off := range offsets {
		dist := back + off
		if dist <= 0 || t-dist < 0 {
			continue
		}
		v := stimuli[t-dist].Values[s]
		if lo.Contains(hard, v) || lo.Contains(soft, v) {
			continue
		}
		return v, true
	}
	return 0, false
}

// fresh draws a value outside hard and soft exclusions. When retries run out,
// it falls back to a draw that only honors the hard exclusions.
func (g *Generator) fresh(size int, hard, soft []int) int {
	for i := 0; i < g.mode.MaxRetries; i++ {
		v := g.rnd.Intn(size)
		if !lo.Contains(hard, v) && !lo.Contains(soft, v) {
			return v
		}
	}
	g.fallbacks++
	candidates := make([]int, 0, size)
	for v := 0; v < size; v++ {
		if !lo.Contains(hard, v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return g.rnd.Intn(size)
	}
	return candidates[g.rnd.Intn(len(candidates))]
}
