package generator

import (
	"math"

	"github.com/verte-zerg/nback/internal/model"
)

const decimalEpsilon = 1e-9

// fillArithmetic picks the operator and operand of trial t. For divisions with a
// back reference, the operand is chosen so the expected quotient has a
// fractional part from AcceptableDecimals.
func (g *Generator) fillArithmetic(stimuli []model.Stimulus, t int) {
	cfg := g.mode.Arithmetic
	cur := &stimuli[t]
	cur.Op = cfg.Operations[g.rnd.Intn(len(cfg.Operations))]

	if cur.Op == model.OpDivide && cur.HasReference() {
		if candidates := g.divisors(stimuli[t-cur.Back].Operand); len(candidates) > 0 {
			cur.Operand = candidates[g.rnd.Intn(len(candidates))]
			return
		}
	}
	cur.Operand = g.operand()
}

func (g *Generator) operandRange() (int, int) {
	cfg := g.mode.Arithmetic
	if cfg.Negatives {
		return -cfg.MaxNumber, cfg.MaxNumber
	}
	return 1, cfg.MaxNumber
}

// operand draws a non-zero operand.
func (g *Generator) operand() int {
	lo, hi := g.operandRange()
	if lo > 0 {
		return lo + g.rnd.Intn(hi-lo+1)
	}
	// [lo, hi] without zero has hi-lo values.
	v := lo + g.rnd.Intn(hi-lo)
	if v >= 0 {
		v++
	}
	return v
}

func (g *Generator) divisors(dividend int) []int {
	lo, hi := g.operandRange()
	var out []int
	for x := lo; x <= hi; x++ {
		if x == 0 {
			continue
		}
		if dividend%x == 0 || g.acceptableFraction(math.Abs(float64(dividend)/float64(x))) {
			out = append(out, x)
		}
	}
	return out
}

func (g *Generator) acceptableFraction(q float64) bool {
	_, frac := math.Modf(q)
	for _, d := range g.mode.Arithmetic.AcceptableDecimals {
		if math.Abs(frac-d) < decimalEpsilon {
			return true
		}
	}
	return false
}
