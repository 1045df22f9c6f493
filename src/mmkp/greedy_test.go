package mmkp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGreedySolutionUnconstrained(t *testing.T) {
	inst := twoByTwo(t, 100)
	sol, err := inst.GreedySolution()
	require.NoError(t, err)
	require.True(t, sol.Assignment.IsFeasible(inst))
	// slack capacity: every upgrade applies
	require.Equal(t, 9.0, sol.Value)
}

func TestGreedySolutionTightCapacity(t *testing.T) {
	inst := twoByTwo(t, 5)
	sol, err := inst.GreedySolution()
	require.NoError(t, err)
	require.True(t, sol.Assignment.IsFeasible(inst))
	require.Equal(t, 8.0, sol.Value)
}

func TestGreedySolutionInfeasible(t *testing.T) {
	inst := twoByTwo(t, 0)
	_, err := inst.GreedySolution()
	require.Error(t, err)
}

func TestGreedySolutionSkipsInfeasibleUpgrades(t *testing.T) {
	// the highest-value item of class 0 never fits
	inst, err := NewInstance(
		[][]float64{{1, 100}, {1, 2}},
		[][][]float64{
			{{1}, {50}},
			{{1}, {2}},
		},
		[]float64{4},
	)
	require.NoError(t, err)

	sol, gerr := inst.GreedySolution()
	require.NoError(t, gerr)
	require.Equal(t, Assignment{0, 1}, sol.Assignment)
	require.Equal(t, 3.0, sol.Value)
}
