package mmkp

import (
	"errors"
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// Fatal misconfigurations of the fixing heuristics: a class with no
// fixable item left means the fixing proportions are inconsistent.
var (
	ErrNoFixableWorst = errors.New("worst-item fixing: no fixable item left")
	ErrNoFixableBest  = errors.New("best-item fixing: no fixable item left")
)

// findWorstItems selects, in class i, the worst prop-fraction of items
// by reduced cost. Ties go to the earliest item in scan order. Items
// already hard-fixed to zero count toward the fraction, so the best
// 1-prop share of the class always stays choosable; a class with no
// fixable item at all is a fatal configuration error.
func (slv *Solver) findWorstItems(class int, rc *mat.VecDense, prop float64) ([]int, error) {
	inst := slv.inst
	fixable := make([]int, 0, inst.ItemCount[class])
	for j := range inst.ItemCount[class] {
		f := inst.flat(class, j)
		if !slv.model.isFixedToZero(f) {
			fixable = append(fixable, f)
		}
	}
	if len(fixable) == 0 {
		return nil, fmt.Errorf("class %d: %w", class, ErrNoFixableWorst)
	}

	alreadyFixed := inst.ItemCount[class] - len(fixable)
	n := int(prop*float64(inst.ItemCount[class])) - alreadyFixed
	if n < 0 {
		n = 0
	}
	picked := make([]int, 0, n)
	taken := make([]bool, len(fixable))
	for len(picked) < n {
		best := -1
		for idx, f := range fixable {
			if taken[idx] {
				continue
			}
			if best < 0 || rc.AtVec(f) < rc.AtVec(fixable[best]) {
				best = idx
			}
		}
		taken[best] = true
		picked = append(picked, fixable[best])
	}
	return picked, nil
}

// bestFixableItem returns the flat index of the highest reduced-cost
// item of the class that is not hard-fixed to zero.
func (slv *Solver) bestFixableItem(class int, rc *mat.VecDense) (int, bool) {
	inst := slv.inst
	best := -1
	for j := range inst.ItemCount[class] {
		f := inst.flat(class, j)
		if slv.model.isFixedToZero(f) {
			continue
		}
		if best < 0 || rc.AtVec(f) > rc.AtVec(best) {
			best = f
		}
	}
	return best, best >= 0
}

// selectForcedItems repeatedly takes the best reduced-cost item among
// classes without a forced item yet, until ceil(propFixed1*numClasses)
// classes carry one. Returns the forced flat indices.
func (slv *Solver) selectForcedItems(rc *mat.VecDense) ([]int, error) {
	inst := slv.inst
	nFixed1 := int(math.Ceil(slv.params.PropFixed1 * float64(inst.NumClasses)))

	forced := mapset.NewSet[int]()
	pq := priorityqueue.New[int, float64](priorityqueue.MaxHeap)
	classBest := make([]int, inst.NumClasses)
	for i := range inst.NumClasses {
		if f, ok := slv.bestFixableItem(i, rc); ok {
			classBest[i] = f
			pq.Put(i, rc.AtVec(f))
		}
	}

	flats := make([]int, 0, nFixed1)
	for forced.Cardinality() < nFixed1 {
		if pq.Len() == 0 {
			return nil, ErrNoFixableBest
		}
		item := pq.Get()
		forced.Add(item.Value)
		flats = append(flats, classBest[item.Value])
	}
	return flats, nil
}

// corridorRepair re-solves the model restricted to a neighborhood of
// the relaxed assignment, optionally fixing variables, and promotes an
// improving feasible solution to incumbent. Every temporary row and
// bound change is undone on every exit path; only exclusion and floor
// cuts survive the call.
func (slv *Solver) corridorRepair(relaxed Assignment, rc *mat.VecDense, step int, fix2zero, fix2one bool) error {
	inst := slv.inst
	mark := slv.model.Mark()
	savedL, savedU := slv.model.saveColumnBounds()
	cleanup := func() {
		slv.model.Rollback(mark)
		slv.model.restoreColumnBounds(savedL, savedU)
	}

	if slv.cWidth > 0 {
		slv.model.addAgreementRow(relaxed, slv.cWidth*float64(inst.NumClasses), inf)
	}
	if fix2zero {
		for i := range inst.NumClasses {
			worst, err := slv.findWorstItems(i, rc, slv.params.PropFixed0)
			if err != nil {
				cleanup()
				return err
			}
			for _, f := range worst {
				slv.model.fixToZero(f)
			}
		}
	}
	if fix2one {
		flats, err := slv.selectForcedItems(rc)
		if err != nil {
			cleanup()
			return err
		}
		// soft quota: at least ceil(cWidth*nFixed1) of the forced
		// choices must appear in the solution
		coeffs := make([]float64, len(flats))
		for i := range coeffs {
			coeffs[i] = 1
		}
		quota := math.Ceil(slv.cWidth * float64(len(flats)))
		slv.model.addSparseRow(quota, flats, coeffs, inf)
	}

	sol, status, err := slv.oracle.Solve(slv.model, SolveBudget{MaxSolutions: slv.nSol})
	cleanup()
	if err != nil || status == StatusNoSolution {
		// solver anomaly or infeasible restriction: no improvement
		// this call, never fatal
		return nil
	}

	if sol.Value > slv.best.Value+eps {
		slv.best = sol
		slv.lastImprove = step
		slv.cWidth = slv.params.CorridorWidth
		slv.nSol = slv.params.NSol
		fmt.Printf("Corridor repair improved lower bound: %f (step %d)\n", sol.Value, step)

		slv.cuts.ExcludeAssignment(sol.Assignment)
		if slv.params.UseObjectiveFloor {
			slv.cuts.AddObjectiveFloor(sol.Value)
		}
	}
	return nil
}
