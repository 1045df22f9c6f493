package mmkp

import (
	"fmt"

	"github.com/lanl/highs"
)

type SolveStatus int

const (
	// StatusNoSolution covers infeasible, unbounded and every other
	// outcome without a usable assignment.
	StatusNoSolution SolveStatus = iota
	StatusFeasible
	StatusOptimal
)

func (s SolveStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	}
	return "no solution"
}

// SolveBudget bounds a single oracle call. The HiGHS binding solves to
// optimality and treats the budget as advisory; MaxSolutions still
// drives the adaptive search (see dual loop).
type SolveBudget struct {
	MaxSolutions int
	RelGap       float64
	TimeLimit    float64
}

// Oracle solves a restricted integer model and reports the outcome.
// A non-nil Solution is returned only with StatusFeasible or better.
type Oracle interface {
	Solve(m *Model, budget SolveBudget) (*Solution, SolveStatus, error)
}

// HighsOracle is the default Oracle on top of github.com/lanl/highs.
type HighsOracle struct{}

func (HighsOracle) Solve(m *Model, budget SolveBudget) (*Solution, SolveStatus, error) {
	solution, err := m.lp.Solve()
	if err != nil {
		return nil, StatusNoSolution, err
	}
	if solution.Status != highs.Optimal {
		return nil, StatusNoSolution, nil
	}

	assign, err := extractAssignment(m.inst, solution.ColumnPrimal)
	if err != nil {
		return nil, StatusNoSolution, err
	}
	return &Solution{Assignment: assign, Value: solution.Objective}, StatusOptimal, nil
}

// SolveMIP solves the unrestricted model in a single oracle call.
func SolveMIP(inst *Instance, oracle Oracle, budget SolveBudget) (*Solution, error) {
	sol, status, err := oracle.Solve(newModel(inst), budget)
	if err != nil {
		return nil, err
	}
	if status == StatusNoSolution {
		return nil, fmt.Errorf("status: %v", status)
	}
	return sol, nil
}

func extractAssignment(inst *Instance, primal []float64) (Assignment, error) {
	assign := make(Assignment, inst.NumClasses)
	for i := range inst.NumClasses {
		chosen := -1
		for j := range inst.ItemCount[i] {
			if primal[inst.flat(i, j)] > 0.5 {
				if chosen >= 0 {
					return nil, fmt.Errorf("class %d: more than one item chosen", i)
				}
				chosen = j
			}
		}
		if chosen < 0 {
			return nil, fmt.Errorf("class %d: no item chosen", i)
		}
		assign[i] = chosen
	}
	return assign, nil
}
