package mmkp

import (
	"slices"

	"github.com/lanl/highs"
)

// Model wraps a HiGHS model with one binary column per flat item.
// Rows are append-only; a Mark taken before a batch of rows makes
// removing that batch a bulk truncation.
type Model struct {
	inst *Instance
	lp   *highs.Model
	// rows and nonzeros of the base formulation, never rolled back
	baseRows int
	baseNnz  int
}

// Mark records the row and nonzero counts of a model so every row
// added afterwards can be dropped in one Rollback.
type Mark struct {
	rows int
	nnz  int
}

func newModel(inst *Instance) *Model {
	lp := new(highs.Model)
	lp.Maximize = true

	lp.VarTypes = make([]highs.VariableType, inst.TotalItems)
	lp.ColLower = make([]float64, inst.TotalItems)
	lp.ColUpper = make([]float64, inst.TotalItems)
	lp.ColCosts = slices.Clone(inst.Values.RawVector().Data)
	for f := range inst.TotalItems {
		lp.VarTypes[f] = highs.IntegerType
		lp.ColUpper[f] = 1
	}

	m := &Model{inst: inst, lp: lp}

	// exactly one item per class
	for i := range inst.NumClasses {
		row := make([]float64, inst.TotalItems)
		for j := range inst.ItemCount[i] {
			row[inst.flat(i, j)] = 1
		}
		m.lp.AddDenseRow(1, row, 1)
	}
	// shared resource capacities
	for k := range inst.NumResources {
		row := make([]float64, inst.TotalItems)
		for f := range inst.TotalItems {
			row[f] = inst.Weights.At(f, k)
		}
		m.lp.AddDenseRow(0, row, inst.Capacities.AtVec(k))
	}
	m.baseRows = len(lp.RowLower)
	m.baseNnz = len(lp.ConstMatrix)
	return m
}

func (m *Model) Mark() Mark {
	return Mark{rows: len(m.lp.RowLower), nnz: len(m.lp.ConstMatrix)}
}

// Rollback removes every row added after the mark was taken.
func (m *Model) Rollback(mark Mark) {
	if mark.rows < m.baseRows {
		mark.rows, mark.nnz = m.baseRows, m.baseNnz
	}
	m.lp.RowLower = m.lp.RowLower[:mark.rows]
	m.lp.RowUpper = m.lp.RowUpper[:mark.rows]
	m.lp.ConstMatrix = m.lp.ConstMatrix[:mark.nnz]
}

func (m *Model) ConstraintCount() int {
	return len(m.lp.RowLower)
}

// addSparseRow appends lb <= sum coeffs[f]*x_f <= ub over the given
// flat item indices.
func (m *Model) addSparseRow(lb float64, cols []int, coeffs []float64, ub float64) {
	row := len(m.lp.RowLower)
	for i, f := range cols {
		m.lp.ConstMatrix = append(m.lp.ConstMatrix,
			highs.Nonzero{Row: row, Col: f, Val: coeffs[i]})
	}
	m.lp.RowLower = append(m.lp.RowLower, lb)
	m.lp.RowUpper = append(m.lp.RowUpper, ub)
}

// addAgreementRow constrains the number of classes on which the next
// solution agrees with ref: lb <= agreement <= ub.
func (m *Model) addAgreementRow(ref Assignment, lb, ub float64) {
	cols := make([]int, m.inst.NumClasses)
	coeffs := make([]float64, m.inst.NumClasses)
	for i, j := range ref {
		cols[i] = m.inst.flat(i, j)
		coeffs[i] = 1
	}
	m.addSparseRow(lb, cols, coeffs, ub)
}

func (m *Model) saveColumnBounds() (lower, upper []float64) {
	return slices.Clone(m.lp.ColLower), slices.Clone(m.lp.ColUpper)
}

func (m *Model) restoreColumnBounds(lower, upper []float64) {
	copy(m.lp.ColLower, lower)
	copy(m.lp.ColUpper, upper)
}

// resetColumnBounds lifts every hard fix, returning all columns to [0,1].
func (m *Model) resetColumnBounds() {
	for f := range m.inst.TotalItems {
		m.lp.ColLower[f] = 0
		m.lp.ColUpper[f] = 1
	}
}

func (m *Model) fixToZero(f int) {
	m.lp.ColUpper[f] = 0
}

func (m *Model) isFixedToZero(f int) bool {
	return m.lp.ColUpper[f] < 0.5
}

func (m *Model) setObjective(coeffs []float64) {
	copy(m.lp.ColCosts, coeffs)
}
