package generator

import (
	"github.com/verte-zerg/nback/internal/model"
)

// plans decides, per channel, which eligible trials are N-back matches.
func (g *Generator) plans(channels []model.Channel, eligible []int) map[model.Channel][]bool {
	out := make(map[model.Channel][]bool, len(channels))
	if g.mode.Strict {
		pos, audio := model.Channel(model.Position), model.Channel(model.Audio)
		out[pos], out[audio] = g.coincidentPlans(eligible)
		return out
	}

	lower, upper := g.mode.MatchBounds(len(eligible))
	pools := g.pools(eligible)
	for _, ch := range channels {
		pool, ok := pools[ch]
		if !ok {
			pool = eligible
		}
		high := min(upper, len(pool))
		low := min(lower, high)
		plan, ok := g.drawPlan(pool, low, high)
		if !ok {
			g.fallbacks++
			plan = g.steerPlan(pool, low, high)
		}
		out[ch] = plan
	}
	return out
}

// pools splits the eligible trials of a combination session between the
// channel pairs that may match on the same trial: visvis with audio, and
// visaudio with audiovis. Any other pair would need one stream to hold two
// values at once.
func (g *Generator) pools(eligible []int) map[model.Channel][]int {
	if !g.mode.Has(model.Combination) {
		return nil
	}
	half := len(eligible) / 2
	perm := g.rnd.Perm(len(eligible))
	var same, cross []int
	for i, t := range eligible {
		if perm[i] < half {
			same = append(same, t)
		} else {
			cross = append(cross, t)
		}
	}
	return map[model.Channel][]int{
		model.VisVis:               same,
		model.Channel(model.Audio): same,
		model.VisAudio:             cross,
		model.AudioVis:             cross,
	}
}

// drawPlan flips a coin per eligible trial and keeps the first plan whose match
// count falls in [lower, upper].
func (g *Generator) drawPlan(eligible []int, lower, upper int) ([]bool, bool) {
	for attempt := 0; attempt < g.mode.MaxRetries; attempt++ {
		plan := make([]bool, g.mode.Trials)
		count := 0
		for _, t := range eligible {
			if g.rnd.Float64() < g.mode.MatchChance {
				plan[t] = true
				count++
			}
		}
		if count >= lower && count <= upper {
			return plan, true
		}
	}
	return nil, false
}

// steerPlan draws a plan that always lands in [lower, upper]: once the upper
// bound is reached no more matches are placed, and once the remaining trials
// are all needed to reach the lower bound every one of them matches.
func (g *Generator) steerPlan(eligible []int, lower, upper int) []bool {
	plan := make([]bool, g.mode.Trials)
	count := 0
	for i, t := range eligible {
		remaining := len(eligible) - i
		switch {
		case count >= upper:
		case lower-count >= remaining:
			plan[t] = true
		default:
			plan[t] = g.rnd.Float64() < g.mode.MatchChance
		}
		if plan[t] {
			count++
		}
	}
	return plan
}

// coincidentPlans builds the strict protocol plans directly: six position
// matches, six audio matches, and exactly two trials where both match.
func (g *Generator) coincidentPlans(eligible []int) ([]bool, []bool) {
	first := make([]bool, g.mode.Trials)
	second := make([]bool, g.mode.Trials)

	perm := g.rnd.Perm(len(eligible))
	picked, rest := perm[:model.JaeggiMatches], perm[model.JaeggiMatches:]
	for _, i := range picked {
		first[eligible[i]] = true
	}
	for _, k := range g.rnd.Perm(len(picked))[:model.JaeggiCoincident] {
		second[eligible[picked[k]]] = true
	}
	for _, k := range g.rnd.Perm(len(rest))[:model.JaeggiMatches-model.JaeggiCoincident] {
		second[eligible[rest[k]]] = true
	}
	return first, second
}
