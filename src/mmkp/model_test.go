package mmkp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModelShape(t *testing.T) {
	inst := twoByTwo(t, 5)
	m := newModel(inst)

	// one choice row per class plus one capacity row per resource
	require.Equal(t, 3, m.ConstraintCount())
	require.Equal(t, 3, m.baseRows)
	require.True(t, m.lp.Maximize)
	require.Len(t, m.lp.ColCosts, inst.TotalItems)
	require.Equal(t, []float64{1, 1}, m.lp.RowLower[:2])
	require.Equal(t, []float64{1, 1}, m.lp.RowUpper[:2])
	require.Equal(t, 5.0, m.lp.RowUpper[2])
}

func TestModelMarkRollback(t *testing.T) {
	inst := twoByTwo(t, 5)
	m := newModel(inst)

	mark := m.Mark()
	nnz := len(m.lp.ConstMatrix)
	m.addAgreementRow(Assignment{0, 0}, 1, inf)
	m.addAgreementRow(Assignment{1, 1}, 0, 1)
	require.Equal(t, 5, m.ConstraintCount())

	m.Rollback(mark)
	require.Equal(t, 3, m.ConstraintCount())
	require.Len(t, m.lp.ConstMatrix, nnz)
}

func TestModelRollbackNeverDropsBaseRows(t *testing.T) {
	inst := twoByTwo(t, 5)
	m := newModel(inst)

	m.Rollback(Mark{})
	require.Equal(t, m.baseRows, m.ConstraintCount())
}

func TestModelColumnBounds(t *testing.T) {
	inst := twoByTwo(t, 5)
	m := newModel(inst)

	lower, upper := m.saveColumnBounds()
	m.fixToZero(2)
	require.True(t, m.isFixedToZero(2))
	require.False(t, m.isFixedToZero(0))

	m.restoreColumnBounds(lower, upper)
	require.False(t, m.isFixedToZero(2))

	m.fixToZero(0)
	m.fixToZero(3)
	m.resetColumnBounds()
	for f := range inst.TotalItems {
		require.False(t, m.isFixedToZero(f))
	}
}
