package mmkp

// CutLedger owns the rows layered on top of the base formulation that
// must outlive a single repair call: exclusion cuts and the optional
// objective floor. All of them are scoped to one macro-iteration;
// Clear drops them in bulk.
type CutLedger struct {
	model *Model
	base  Mark
	count int
}

func newCutLedger(m *Model) *CutLedger {
	return &CutLedger{model: m, base: m.Mark()}
}

// ExcludeAssignment forbids the solver from reproducing exactly this
// assignment: its agreement with any later solution is at most
// numClasses-1.
func (cl *CutLedger) ExcludeAssignment(a Assignment) {
	nC := cl.model.inst.NumClasses
	cl.model.addAgreementRow(a, 0, float64(nC-1))
	cl.count++
}

// AddObjectiveFloor requires total value >= lb, pruning dominated
// solutions. Disabled by default (Params.UseObjectiveFloor).
func (cl *CutLedger) AddObjectiveFloor(lb float64) {
	cols := make([]int, cl.model.inst.TotalItems)
	coeffs := make([]float64, cl.model.inst.TotalItems)
	for f := range cl.model.inst.TotalItems {
		cols[f] = f
		coeffs[f] = cl.model.inst.Values.AtVec(f)
	}
	cl.model.addSparseRow(lb, cols, coeffs, inf)
	cl.count++
}

func (cl *CutLedger) Count() int {
	return cl.count
}

// Clear removes every cut added since the ledger was created.
func (cl *CutLedger) Clear() {
	cl.model.Rollback(cl.base)
	cl.count = 0
}
