package mmkp

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/tomcraven/goga"
)

// Population heuristic on top of goga. It is an independent alternate
// solver, selectable from the CLI; the hybrid Lagrangian search never
// calls it.

const populationSize = 1000

// decodeGenome maps a bitset over all flat items to an assignment:
// per class, the first set bit wins, item 0 when none is set.
func (inst *Instance) decodeGenome(g goga.Genome) Assignment {
	bits := g.GetBits().GetAll()
	assign := make(Assignment, inst.NumClasses)
	for i := range inst.NumClasses {
		for j := range inst.ItemCount[i] {
			if bits[inst.flat(i, j)] == 1 {
				assign[i] = j
				break
			}
		}
	}
	return assign
}

type choiceSimulator struct {
	Instance *Instance
}

func (sms *choiceSimulator) OnBeginSimulation() {}
func (sms *choiceSimulator) OnEndSimulation()   {}

func (sms *choiceSimulator) Simulate(g goga.Genome) {
	assign := sms.Instance.decodeGenome(g)
	if assign.IsFeasible(sms.Instance) {
		g.SetFitness(int(math.Round(assign.Value(sms.Instance) * 1000)))
	} else {
		g.SetFitness(math.MinInt)
	}
}

func (sms *choiceSimulator) ExitFunc(g goga.Genome) bool {
	return true
}

type choiceBitsetCreate struct {
	Instance *Instance
}

func (bc *choiceBitsetCreate) Go() goga.Bitset {
	b := goga.Bitset{}
	b.Create(bc.Instance.TotalItems)
	for i := range bc.Instance.NumClasses {
		j := rand.Intn(bc.Instance.ItemCount[i])
		b.Set(bc.Instance.flat(i, j), 1)
	}
	return b
}

type bestChoiceConsumer struct {
	BestGenome goga.Genome
	Instance   *Instance
}

func (ec *bestChoiceConsumer) OnElite(g goga.Genome) {
	if ec.BestGenome == nil || ec.BestGenome.GetFitness() < g.GetFitness() {
		if ec.Instance.decodeGenome(g).IsFeasible(ec.Instance) {
			ec.BestGenome = g
		}
	}
}

// GeneticSolution searches assignments with a bitset genetic
// algorithm, stopping after rounds generations without elite
// improvement. threads <= 0 uses every CPU.
func (inst *Instance) GeneticSolution(rounds, threads int) *Solution {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	classMutate := func(g1, g2 goga.Genome) (goga.Genome, goga.Genome) {
		g1Bits := g1.GetBits().CreateCopy()
		class := rand.Intn(inst.NumClasses)
		for j := range inst.ItemCount[class] {
			g1Bits.Set(inst.flat(class, j), 0)
		}
		g1Bits.Set(inst.flat(class, rand.Intn(inst.ItemCount[class])), 1)
		return goga.NewGenome(g1Bits), goga.NewGenome(*g2.GetBits())
	}

	genAlgo := goga.NewGeneticAlgorithm()
	genAlgo.Simulator = &choiceSimulator{Instance: inst}
	genAlgo.BitsetCreate = &choiceBitsetCreate{Instance: inst}
	eliteConsumer := &bestChoiceConsumer{Instance: inst}
	genAlgo.EliteConsumer = eliteConsumer
	genAlgo.Mater = goga.NewMater(
		[]goga.MaterFunctionProbability{
			{P: 0.9, F: goga.TwoPointCrossover, UseElite: true},
			{P: 0.9, F: goga.TwoPointCrossover},
			{P: 0.9, F: classMutate},
			{P: 0.9, F: classMutate},
			{P: 0.9, F: classMutate},
			{P: 0.9, F: goga.UniformCrossover},
		},
	)
	genAlgo.Selector = goga.NewSelector(
		[]goga.SelectorFunctionProbability{
			{P: 0.9, F: goga.Roulette},
		},
	)
	genAlgo.Init(populationSize, threads)

	noImprovRounds := 0
	lastFitness := math.MinInt
	t := time.Now()
	genAlgo.SimulateUntil(func(g goga.Genome) bool {
		if g.GetFitness() == math.MinInt {
			return false
		}
		if g.GetFitness() == lastFitness {
			noImprovRounds++
		} else {
			noImprovRounds = 0
			lastFitness = g.GetFitness()
		}
		return noImprovRounds == rounds
	})
	fmt.Println("Genetic algorithm time:", time.Since(t))

	if eliteConsumer.BestGenome == nil {
		return &Solution{
			Assignment: make(Assignment, inst.NumClasses),
			Value:      math.Inf(-1),
		}
	}

	assign := inst.decodeGenome(eliteConsumer.BestGenome)
	return &Solution{Assignment: assign, Value: assign.Value(inst)}
}
