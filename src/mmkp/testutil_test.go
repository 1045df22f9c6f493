package mmkp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// enumOracle is an Oracle for tests: it enumerates every assignment
// and returns the best one honoring the model's column bounds and all
// of its rows. Small instances only.
type enumOracle struct {
	calls int
}

func (o *enumOracle) Solve(m *Model, budget SolveBudget) (*Solution, SolveStatus, error) {
	o.calls++
	inst := m.inst

	var best Assignment
	bestVal := math.Inf(-1)

	assign := make(Assignment, inst.NumClasses)
	var walk func(class int)
	walk = func(class int) {
		if class == inst.NumClasses {
			if !o.admissible(m, assign) {
				return
			}
			v := 0.0
			for i, j := range assign {
				v += m.lp.ColCosts[inst.flat(i, j)]
			}
			if v > bestVal {
				bestVal = v
				best = assign.Clone()
			}
			return
		}
		for j := range inst.ItemCount[class] {
			assign[class] = j
			walk(class + 1)
		}
	}
	walk(0)

	if best == nil {
		return nil, StatusNoSolution, nil
	}
	return &Solution{Assignment: best, Value: bestVal}, StatusOptimal, nil
}

func (o *enumOracle) admissible(m *Model, assign Assignment) bool {
	inst := m.inst
	x := make([]float64, inst.TotalItems)
	for i, j := range assign {
		x[inst.flat(i, j)] = 1
	}
	for f, v := range x {
		if v > 0.5 && m.lp.ColUpper[f] < 0.5 {
			return false
		}
		if v < 0.5 && m.lp.ColLower[f] > 0.5 {
			return false
		}
	}

	activity := make([]float64, len(m.lp.RowLower))
	for _, nz := range m.lp.ConstMatrix {
		activity[nz.Row] += nz.Val * x[nz.Col]
	}
	for r, a := range activity {
		if a < m.lp.RowLower[r]-eps || a > m.lp.RowUpper[r]+eps {
			return false
		}
	}
	return true
}

// twoByTwo is the smallest interesting instance: 2 classes, 2 items
// each, 1 resource. With capacity 100 every assignment is feasible and
// the optimum picks items (1,1) for value 9.
func twoByTwo(t *testing.T, capacity float64) *Instance {
	t.Helper()
	inst, err := NewInstance(
		[][]float64{{4, 5}, {3, 4}},
		[][][]float64{
			{{2}, {3}},
			{{1}, {4}},
		},
		[]float64{capacity},
	)
	require.NoError(t, err)
	return inst
}

// fourItems has one class of four items over one resource, reduced
// costs equal to values when multipliers are zero.
func fourItems(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(
		[][]float64{{7, 2, 9, 5}},
		[][][]float64{{{1}, {1}, {1}, {1}}},
		[]float64{10},
	)
	require.NoError(t, err)
	return inst
}

// newTestSolver wires a solver around the enumeration oracle with a
// freshly built model and ledger, without running the search.
func newTestSolver(t *testing.T, inst *Instance, params Params) *Solver {
	t.Helper()
	slv := NewSolver(inst, params, &enumOracle{})
	slv.model = newModel(inst)
	slv.cuts = newCutLedger(slv.model)
	slv.cWidth = params.CorridorWidth
	slv.freq = params.RepairFreq
	slv.nSol = params.NSol
	return slv
}
