package mmkp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindWorstItemsHalfOfFour(t *testing.T) {
	inst := fourItems(t)
	slv := newTestSolver(t, inst, DefaultParams())

	rc := inst.reducedCosts(initMultipliers(inst))
	worst, err := slv.findWorstItems(0, rc, 0.5)
	require.NoError(t, err)
	// values 7 2 9 5: the two lowest reduced costs are items 1 and 3
	require.ElementsMatch(t, []int{1, 3}, worst)
}

func TestFindWorstItemsDeterministicTies(t *testing.T) {
	inst, err := NewInstance(
		[][]float64{{5, 5, 5, 5}},
		[][][]float64{{{1}, {1}, {1}, {1}}},
		[]float64{10},
	)
	require.NoError(t, err)
	slv := newTestSolver(t, inst, DefaultParams())

	rc := inst.reducedCosts(initMultipliers(inst))
	worst, err := slv.findWorstItems(0, rc, 0.5)
	require.NoError(t, err)
	// all reduced costs equal: earliest scan order wins
	require.Equal(t, []int{0, 1}, worst)

	again, err := slv.findWorstItems(0, rc, 0.5)
	require.NoError(t, err)
	require.Equal(t, worst, again)
}

func TestFindWorstItemsCountsFixedTowardFraction(t *testing.T) {
	inst := fourItems(t)
	slv := newTestSolver(t, inst, DefaultParams())
	slv.model.fixToZero(1)

	rc := inst.reducedCosts(initMultipliers(inst))
	worst, err := slv.findWorstItems(0, rc, 0.5)
	require.NoError(t, err)
	// item 1 already fixed counts toward the half: one more to fix,
	// the worst remaining being item 3
	require.Equal(t, []int{3}, worst)
}

func TestFindWorstItemsLeavesBestShareFree(t *testing.T) {
	inst := fourItems(t)
	slv := newTestSolver(t, inst, DefaultParams())
	// half of the class fixed up front, as between macro-iterations
	slv.model.fixToZero(1)
	slv.model.fixToZero(3)

	rc := inst.reducedCosts(initMultipliers(inst))
	worst, err := slv.findWorstItems(0, rc, 0.75)
	require.NoError(t, err)
	// 0.75 of 4 is 3 items, 2 already fixed: only item 0 joins and
	// the best item stays choosable
	require.Equal(t, []int{0}, worst)

	slv.model.fixToZero(0)
	none, err := slv.findWorstItems(0, rc, 0.75)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestFindWorstItemsAllFixedIsFatal(t *testing.T) {
	inst := fourItems(t)
	slv := newTestSolver(t, inst, DefaultParams())
	for f := range inst.TotalItems {
		slv.model.fixToZero(f)
	}

	rc := inst.reducedCosts(initMultipliers(inst))
	_, err := slv.findWorstItems(0, rc, 0.5)
	require.ErrorIs(t, err, ErrNoFixableWorst)
}

func TestSelectForcedItems(t *testing.T) {
	inst := twoByTwo(t, 100)
	params := DefaultParams()
	params.PropFixed1 = 0.5
	slv := newTestSolver(t, inst, params)

	rc := inst.reducedCosts(initMultipliers(inst))
	flats, err := slv.selectForcedItems(rc)
	require.NoError(t, err)
	// ceil(0.5*2) = 1 class, and its best item is class 0 item 1
	require.Equal(t, []int{1}, flats)
}

func TestSelectForcedItemsAllClassesFixedIsFatal(t *testing.T) {
	inst := twoByTwo(t, 100)
	slv := newTestSolver(t, inst, DefaultParams())
	for f := range inst.TotalItems {
		slv.model.fixToZero(f)
	}

	rc := inst.reducedCosts(initMultipliers(inst))
	_, err := slv.selectForcedItems(rc)
	require.ErrorIs(t, err, ErrNoFixableBest)
}

func TestCorridorRowFullWidthPinsReference(t *testing.T) {
	inst := twoByTwo(t, 100)
	m := newModel(inst)
	ref := Assignment{0, 1}
	m.addAgreementRow(ref, float64(inst.NumClasses), inf)

	oracle := &enumOracle{}
	for _, a := range []Assignment{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		require.Equal(t, a.Equal(ref), oracle.admissible(m, a))
	}
}

func TestCorridorRowZeroWidthUnrestricted(t *testing.T) {
	inst := twoByTwo(t, 100)
	m := newModel(inst)
	m.addAgreementRow(Assignment{0, 1}, 0, inf)

	oracle := &enumOracle{}
	for _, a := range []Assignment{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		require.True(t, oracle.admissible(m, a))
	}
}

func TestCorridorRepairZeroWidthMatchesUnrestrictedSolve(t *testing.T) {
	// every assignment feasible, no corridor, no fixing: the repair
	// must find exactly what an unrestricted solve finds
	inst := twoByTwo(t, 100)
	params := DefaultParams()
	params.CorridorWidth = 0
	slv := newTestSolver(t, inst, params)
	slv.cWidth = 0
	slv.best = &Solution{Value: math.Inf(-1)}

	relaxed, _, rc := inst.dualStep(initMultipliers(inst))
	require.NoError(t, slv.corridorRepair(relaxed, rc, 0, false, false))

	unrestricted, err := SolveMIP(inst, &enumOracle{}, SolveBudget{})
	require.NoError(t, err)
	require.Equal(t, unrestricted.Value, slv.best.Value)
}

func TestCorridorRepairCleansUpOnSuccess(t *testing.T) {
	inst := twoByTwo(t, 100)
	slv := newTestSolver(t, inst, DefaultParams())
	slv.best = &Solution{Value: math.Inf(-1)}
	baseRows := slv.model.ConstraintCount()
	savedUpper := append([]float64(nil), slv.model.lp.ColUpper...)

	relaxed, _, rc := inst.dualStep(initMultipliers(inst))
	require.NoError(t, slv.corridorRepair(relaxed, rc, 0, true, true))

	// the improvement left exactly one exclusion cut behind; every
	// temporary row and bound change is gone
	require.Equal(t, baseRows+1, slv.model.ConstraintCount())
	require.Equal(t, 1, slv.cuts.Count())
	require.Equal(t, savedUpper, slv.model.lp.ColUpper)
}

func TestCorridorRepairImprovesAndExcludes(t *testing.T) {
	inst := twoByTwo(t, 100)
	slv := newTestSolver(t, inst, DefaultParams())
	slv.best = &Solution{Value: math.Inf(-1)}

	relaxed, _, rc := inst.dualStep(initMultipliers(inst))
	require.NoError(t, slv.corridorRepair(relaxed, rc, 5, false, false))
	require.Equal(t, 9.0, slv.best.Value)
	require.Equal(t, 5, slv.lastImprove)

	// the incumbent is now excluded: a second repair inside the same
	// corridor finds nothing and the incumbent stands
	first := slv.best.Assignment.Clone()
	require.NoError(t, slv.corridorRepair(relaxed, rc, 6, false, false))
	require.Equal(t, 9.0, slv.best.Value)
	require.True(t, slv.best.Assignment.Equal(first))

	sol, status, err := slv.oracle.Solve(slv.model, SolveBudget{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)
	require.False(t, sol.Assignment.Equal(first))
}

func TestCorridorRepairAfterHardFixing(t *testing.T) {
	// the worst half of every class is hard-fixed between
	// macro-iterations; a zero-fixing repair on top of that must
	// leave at least one item per class choosable and still recover
	// a feasible improvement
	inst := twoByTwo(t, 100)
	slv := newTestSolver(t, inst, DefaultParams())
	slv.best = &Solution{Value: math.Inf(-1)}

	lambda := initMultipliers(inst)
	require.NoError(t, slv.hardFixWorst(lambda))
	for i := range inst.NumClasses {
		_, ok := slv.bestFixableItem(i, inst.reducedCosts(lambda))
		require.True(t, ok)
	}

	relaxed, _, rc := inst.dualStep(lambda)
	require.NoError(t, slv.corridorRepair(relaxed, rc, 0, true, true))
	require.Equal(t, 9.0, slv.best.Value)
	require.True(t, slv.best.Assignment.IsFeasible(inst))
}

func TestCorridorRepairInfeasibleRestrictionIsNotFatal(t *testing.T) {
	// zero capacity with positive weights: nothing feasible, the
	// repair reports no improvement and leaves the model clean
	inst := twoByTwo(t, 0)
	slv := newTestSolver(t, inst, DefaultParams())
	slv.best = &Solution{Value: math.Inf(-1)}
	baseRows := slv.model.ConstraintCount()

	relaxed, _, rc := inst.dualStep(initMultipliers(inst))
	require.NoError(t, slv.corridorRepair(relaxed, rc, 0, false, false))
	require.True(t, math.IsInf(slv.best.Value, -1))
	require.Equal(t, baseRows, slv.model.ConstraintCount())
}
