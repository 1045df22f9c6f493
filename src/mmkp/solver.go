package mmkp

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/mat"
)

const eps = 1e-8

var inf = math.Inf(1)

// Params are the tunables of the hybrid Lagrangian/corridor search.
type Params struct {
	// Restarts is the number of Lagrangian macro-iterations.
	Restarts int
	// MaxDualSteps caps the dual steps of one macro-iteration.
	MaxDualSteps int
	// WarmupSteps delays the first corridor repair.
	WarmupSteps int
	// FixAfterSteps delays the variable-fixing policies.
	FixAfterSteps int
	// RepairFreq is the base distance in dual steps between repairs.
	RepairFreq    int
	MinRepairFreq int
	// StallSteps without an incumbent improvement trigger the
	// adaptive shrinking of the repair neighborhood.
	StallSteps int

	CorridorWidth    float64
	MinCorridorWidth float64
	WidthDecay       float64

	// NSol is the base oracle solution budget; InitNSol bounds the
	// initial unrestricted call, PolishNSol the final polish passes.
	NSol       int
	InitNSol   int
	PolishNSol int

	// PropFixed0 is the per-class fraction of worst items fixed to
	// zero; PropFixed1 the fraction of classes given a forced item;
	// RestartPropFixed0 the hard-fixing fraction between restarts.
	PropFixed0        float64
	PropFixed1        float64
	RestartPropFixed0 float64

	Fix2Zero bool
	Fix2One  bool

	// PolishWidth is the corridor agreement of the two final passes;
	// PolishReducedCosts re-weights their objective to the stale
	// Lagrangian reduced costs.
	PolishWidth        float64
	PolishReducedCosts bool

	UseObjectiveFloor bool

	Seed int64
}

func DefaultParams() Params {
	return Params{
		Restarts:           3,
		MaxDualSteps:       2000,
		WarmupSteps:        200,
		FixAfterSteps:      200,
		RepairFreq:         30,
		MinRepairFreq:      5,
		StallSteps:         100,
		CorridorWidth:      0.9,
		MinCorridorWidth:   0.01,
		WidthDecay:         0.9,
		NSol:               3,
		InitNSol:           3,
		PolishNSol:         50,
		PropFixed0:         0.75,
		PropFixed1:         0.25,
		RestartPropFixed0:  0.5,
		Fix2Zero:           true,
		Fix2One:            true,
		PolishWidth:        0.98,
		PolishReducedCosts: false,
		UseObjectiveFloor:  false,
		Seed:               1,
	}
}

// Solver owns the optimization model, the cut ledger and the incumbent
// bounds for one run. Single-threaded: the model passes by reference
// through dual loop, corridor repair and cut ledger.
type Solver struct {
	inst   *Instance
	params Params
	oracle Oracle
	rng    *rand.Rand

	model *Model
	cuts  *CutLedger

	// best feasible solution, monotone over the whole run
	best *Solution
	// best dual bound of the current macro-iteration
	upperBoundStar float64
	bestLambda     *mat.VecDense
	bestRelaxed    Assignment

	// adaptive repair state, reset each macro-iteration
	cWidth      float64
	freq        int
	nSol        int
	lastImprove int
}

func NewSolver(inst *Instance, params Params, oracle Oracle) *Solver {
	return &Solver{
		inst:       inst,
		params:     params,
		oracle:     oracle,
		rng:        rand.New(rand.NewSource(params.Seed)),
		best:       &Solution{Value: math.Inf(-1)},
		bestLambda: mat.NewVecDense(inst.NumResources, nil),
	}
}

// LowerBound is the objective of the best feasible solution found.
func (slv *Solver) LowerBound() float64 {
	return slv.best.Value
}

// UpperBound is the best dual bound of the last macro-iteration.
func (slv *Solver) UpperBound() float64 {
	return slv.upperBoundStar
}

// BestRelaxed is the relaxed assignment behind the best dual bound of
// the last macro-iteration. It may violate capacities.
func (slv *Solver) BestRelaxed() Assignment {
	return slv.bestRelaxed
}

// Solve runs the full hybrid search: an initial feasible bound, the
// configured number of Lagrangian macro-iterations with multiplier
// perturbation and hard fixing in between, and the final two-pass
// corridor polish around the incumbent.
func (slv *Solver) Solve() (*Solution, error) {
	slv.model = newModel(slv.inst)
	slv.cuts = newCutLedger(slv.model)

	if err := slv.initialBound(); err != nil {
		return nil, err
	}

	lambda := initMultipliers(slv.inst)
	slv.bestLambda.CloneFromVec(lambda)

	for r := range slv.params.Restarts {
		slv.model.resetColumnBounds()
		if r > 0 {
			perturbMultipliers(slv.rng, lambda, slv.bestLambda)
			if err := slv.hardFixWorst(lambda); err != nil {
				return nil, err
			}
		}
		if err := slv.runDualLoop(lambda); err != nil {
			return nil, err
		}
		slv.cuts.Clear()
		fmt.Printf("Macro-iteration %d done: lb = %f, z* = %f\n",
			r+1, slv.best.Value, slv.upperBoundStar)
	}

	if err := slv.polish(); err != nil {
		return nil, err
	}
	return slv.best, nil
}

// initialBound obtains the first feasible incumbent from a single
// unrestricted oracle call; a greedy construction backs it up when the
// oracle reports nothing usable.
func (slv *Solver) initialBound() error {
	sol, status, err := slv.oracle.Solve(slv.model, SolveBudget{MaxSolutions: slv.params.InitNSol})
	if err == nil && status != StatusNoSolution {
		slv.best = sol
		fmt.Printf("Initial lower bound: %f\n", sol.Value)
		return nil
	}

	greedy, gerr := slv.inst.GreedySolution()
	if gerr != nil {
		return fmt.Errorf("no initial feasible solution: %v", gerr)
	}
	slv.best = greedy
	fmt.Printf("Initial lower bound (greedy): %f\n", greedy.Value)
	return nil
}

// hardFixWorst recomputes reduced costs under the perturbed
// multipliers and hard-fixes the worst half of every class to zero for
// the whole next macro-iteration.
func (slv *Solver) hardFixWorst(lambda *mat.VecDense) error {
	rc := slv.inst.reducedCosts(lambda)
	for i := range slv.inst.NumClasses {
		worst, err := slv.findWorstItems(i, rc, slv.params.RestartPropFixed0)
		if err != nil {
			return err
		}
		for _, f := range worst {
			slv.model.fixToZero(f)
		}
	}
	return nil
}

// polish runs the fixed two-pass corridor-method post-processing
// around the incumbent with a large solution budget.
func (slv *Solver) polish() error {
	if slv.best.Assignment == nil {
		return nil
	}
	slv.model.resetColumnBounds()
	original := slices.Clone(slv.inst.Values.RawVector().Data)

	for pass := 0; pass < 2; pass++ {
		mark := slv.model.Mark()
		if slv.params.PolishReducedCosts {
			rc := slv.inst.reducedCosts(slv.bestLambda)
			slv.model.setObjective(rc.RawVector().Data)
		}
		lb := slv.params.PolishWidth * float64(slv.inst.NumClasses)
		slv.model.addAgreementRow(slv.best.Assignment, lb, inf)

		sol, status, err := slv.oracle.Solve(slv.model, SolveBudget{MaxSolutions: slv.params.PolishNSol})

		slv.model.setObjective(original)
		slv.model.Rollback(mark)

		if err != nil || status == StatusNoSolution {
			continue
		}
		// the pass may have optimized re-weighted coefficients:
		// always score against the true values
		value := sol.Assignment.Value(slv.inst)
		if value > slv.best.Value+eps {
			slv.best = &Solution{Assignment: sol.Assignment, Value: value}
			fmt.Printf("Polish pass %d improved lower bound: %f\n", pass+1, value)
		}
	}
	return nil
}
