package mmkp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// runDualLoop performs one Lagrangian macro-iteration: repeated dual
// steps with subgradient multiplier updates, invoking corridor repair
// every freq steps once past the warm-up threshold. The repair
// neighborhood shrinks adaptively while the incumbent stalls.
func (slv *Solver) runDualLoop(lambda *mat.VecDense) error {
	p := slv.params
	slv.upperBoundStar = math.Inf(1)
	slv.cWidth = p.CorridorWidth
	slv.freq = p.RepairFreq
	slv.nSol = p.NSol
	slv.lastImprove = 0
	ms := newMultiplierState()

	for iter := 0; iter < p.MaxDualSteps; iter++ {
		relaxed, zL, rc := slv.inst.dualStep(lambda)

		if zL < slv.upperBoundStar {
			slv.upperBoundStar = zL
			slv.bestLambda.CloneFromVec(lambda)
			slv.bestRelaxed = relaxed.Clone()
		}

		if iter > p.WarmupSteps && iter%slv.freq == 0 {
			// fixing policies stay off until the dual bound settles
			fix := iter > p.FixAfterSteps
			err := slv.corridorRepair(relaxed, rc, iter,
				fix && p.Fix2Zero, fix && p.Fix2One)
			if err != nil {
				return err
			}
			if iter-slv.lastImprove > p.StallSteps {
				slv.cWidth = math.Max(slv.cWidth*p.WidthDecay, p.MinCorridorWidth)
				slv.freq = max(slv.freq/2, p.MinRepairFreq)
				slv.nSol++
			}
		}

		if ms.update(slv.inst, lambda, relaxed, zL, slv.best.Value, iter) {
			fmt.Printf("Dual bound stalled at step %d (z* = %f)\n", iter, slv.upperBoundStar)
			break
		}
	}
	return nil
}
