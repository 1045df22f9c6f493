package mmkp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// lightestItem returns the item of the class with the smallest
// capacity-normalized load.
func (inst *Instance) lightestItem(class int) int {
	best, bestLoad := 0, inf
	for j := range inst.ItemCount[class] {
		load := 0.0
		for k := range inst.NumResources {
			c := inst.Capacities.AtVec(k)
			if c > 0 {
				load += inst.Weights.At(inst.flat(class, j), k) / c
			} else {
				load += inst.Weights.At(inst.flat(class, j), k)
			}
		}
		if load < bestLoad {
			best, bestLoad = j, load
		}
	}
	return best
}

// bestUpgrade finds the most valuable feasible replacement for the
// class's current item under the given usage, returning the value gain.
func (inst *Instance) bestUpgrade(assign Assignment, usage *mat.VecDense, class int) (int, float64) {
	cur := inst.flat(class, assign[class])
	best, bestGain := -1, 0.0
	for j := range inst.ItemCount[class] {
		f := inst.flat(class, j)
		gain := inst.Values.AtVec(f) - inst.Values.AtVec(cur)
		if gain <= bestGain {
			continue
		}
		fits := true
		for k := range inst.NumResources {
			u := usage.AtVec(k) - inst.Weights.At(cur, k) + inst.Weights.At(f, k)
			if u > inst.Capacities.AtVec(k)+eps {
				fits = false
				break
			}
		}
		if fits {
			best, bestGain = j, gain
		}
	}
	return best, bestGain
}

// GreedySolution builds a feasible solution without the oracle: start
// from the lightest item of every class, then greedily apply the most
// valuable feasible single-class upgrades.
func (inst *Instance) GreedySolution() (*Solution, error) {
	assign := make(Assignment, inst.NumClasses)
	for i := range inst.NumClasses {
		assign[i] = inst.lightestItem(i)
	}
	usage := assign.Usage(inst)
	for k := range inst.NumResources {
		if usage.AtVec(k) > inst.Capacities.AtVec(k)+eps {
			return nil, fmt.Errorf("Infeasible")
		}
	}

	pq := priorityqueue.New[int, float64](priorityqueue.MaxHeap)
	for i := range inst.NumClasses {
		if _, gain := inst.bestUpgrade(assign, usage, i); gain > 0 {
			pq.Put(i, gain)
		}
	}
	for pq.Len() > 0 {
		class := pq.Get().Value
		// the queued gain may be stale once capacity tightened
		j, gain := inst.bestUpgrade(assign, usage, class)
		if gain <= 0 {
			continue
		}
		old := inst.flat(class, assign[class])
		assign[class] = j
		f := inst.flat(class, j)
		for k := range inst.NumResources {
			usage.SetVec(k, usage.AtVec(k)-inst.Weights.At(old, k)+inst.Weights.At(f, k))
		}
		if _, g := inst.bestUpgrade(assign, usage, class); g > 0 {
			pq.Put(class, g)
		}
	}

	return &Solution{Assignment: assign, Value: assign.Value(inst)}, nil
}
