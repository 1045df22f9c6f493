package mmkp

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	lagrBaseAlpha   = 2.0
	lagrAlphaDecay  = 0.5
	lagrAlphaFloor  = 1e-4
	lagrAlphaPeriod = 20
	lagrWindow      = 300
	lagrStopEps     = 1e-6
)

func initMultipliers(inst *Instance) *mat.VecDense {
	return mat.NewVecDense(inst.NumResources, nil)
}

// reducedCosts computes value - lambda'weight for every flat item.
func (inst *Instance) reducedCosts(lambda *mat.VecDense) *mat.VecDense {
	rc := mat.NewVecDense(inst.TotalItems, nil)
	rc.MulVec(inst.Weights, lambda)
	rc.SubVec(inst.Values, rc)
	return rc
}

// dualStep solves the Lagrangian subproblem for the current
// multipliers: per class, the item of maximum reduced cost. The
// returned zL is a valid upper bound on the optimum; the assignment
// may violate capacities.
func (inst *Instance) dualStep(lambda *mat.VecDense) (Assignment, float64, *mat.VecDense) {
	rc := inst.reducedCosts(lambda)
	assign := make(Assignment, inst.NumClasses)
	zL := mat.Dot(lambda, inst.Capacities)
	for i := range inst.NumClasses {
		best := 0
		for j := 1; j < inst.ItemCount[i]; j++ {
			if rc.AtVec(inst.flat(i, j)) > rc.AtVec(inst.flat(i, best)) {
				best = j
			}
		}
		assign[i] = best
		zL += rc.AtVec(inst.flat(i, best))
	}
	return assign, zL, rc
}

// multiplierState carries the running statistics of the subgradient
// ascent: the best and worst bounds seen so far and a rolling window
// used to detect a stalled dual bound.
type multiplierState struct {
	alpha     float64
	bestLagr  float64
	worstLagr float64
	start300  float64
	best300   float64
	sinceBest int
}

func newMultiplierState() *multiplierState {
	return &multiplierState{
		alpha:     lagrBaseAlpha,
		bestLagr:  math.Inf(1),
		worstLagr: math.Inf(-1),
		start300:  math.Inf(1),
		best300:   math.Inf(1),
	}
}

// update performs one projected subgradient step on the capacity
// violations and reports whether this macro-iteration should stop.
func (ms *multiplierState) update(inst *Instance, lambda *mat.VecDense, relaxed Assignment, zL, lowerBound float64, iter int) bool {
	if zL < ms.bestLagr {
		ms.bestLagr = zL
		ms.sinceBest = 0
	} else {
		ms.sinceBest++
		if ms.sinceBest >= lagrAlphaPeriod {
			ms.alpha = math.Max(ms.alpha*lagrAlphaDecay, lagrAlphaFloor)
			ms.sinceBest = 0
		}
	}
	if zL > ms.worstLagr {
		ms.worstLagr = zL
	}
	if zL < ms.best300 {
		ms.best300 = zL
	}
	if iter > 0 && iter%lagrWindow == 0 {
		if ms.start300-ms.best300 < lagrStopEps*math.Max(1, math.Abs(ms.start300)) {
			return true
		}
		ms.start300 = ms.best300
		ms.best300 = math.Inf(1)
	}

	// subgradient of the dual: resource usage minus capacity
	g := relaxed.Usage(inst)
	g.SubVec(g, inst.Capacities)
	norm := mat.Dot(g, g)
	if norm < eps {
		// relaxed solution feasible and complementary: dual optimum
		return true
	}

	step := ms.alpha * (zL - lowerBound) / norm
	if step < 0 {
		step = ms.alpha
	}
	for k := range lambda.Len() {
		lambda.SetVec(k, math.Max(0, lambda.AtVec(k)+step*g.AtVec(k)))
	}
	return false
}

// perturbMultipliers reseeds lambda with multiplicative noise around
// the best multipliers of the previous macro-iteration.
func perturbMultipliers(rng *rand.Rand, lambda, bestLambda *mat.VecDense) {
	for k := range lambda.Len() {
		noise := 0.9 + 0.2*rng.Float64()
		lambda.SetVec(k, math.Max(0, bestLambda.AtVec(k)*noise))
	}
}
