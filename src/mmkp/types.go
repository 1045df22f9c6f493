package mmkp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Instance is an immutable multiple-choice multidimensional knapsack
// problem. Items of all classes are stored flat; Offset[i] is the index
// of class i's first item in Values and in the rows of Weights.
type Instance struct {
	NumClasses   int
	NumResources int
	ItemCount    []int
	Offset       []int
	TotalItems   int
	Values       *mat.VecDense
	Weights      *mat.Dense
	Capacities   *mat.VecDense
}

// Assignment maps each class index to the chosen item index within
// that class. Exactly one item per class, always.
type Assignment []int

type Solution struct {
	Assignment Assignment
	Value      float64
}

func (inst *Instance) flat(class, item int) int {
	return inst.Offset[class] + item
}

func (a Assignment) Clone() Assignment {
	b := make(Assignment, len(a))
	copy(b, a)
	return b
}

// Indicator expands the assignment into a 0/1 column vector over all
// flat item indices.
func (a Assignment) Indicator(inst *Instance) *mat.VecDense {
	x := mat.NewVecDense(inst.TotalItems, nil)
	for i, j := range a {
		x.SetVec(inst.flat(i, j), 1)
	}
	return x
}

func (a Assignment) Value(inst *Instance) float64 {
	v := 0.0
	for i, j := range a {
		v += inst.Values.AtVec(inst.flat(i, j))
	}
	return v
}

// Usage returns the per-resource consumption of the assignment.
func (a Assignment) Usage(inst *Instance) *mat.VecDense {
	usage := mat.NewVecDense(inst.NumResources, nil)
	usage.MulVec(inst.Weights.T(), a.Indicator(inst))
	return usage
}

func (a Assignment) IsFeasible(inst *Instance) bool {
	usage := a.Usage(inst)
	for k := range inst.NumResources {
		if usage.AtVec(k) > inst.Capacities.AtVec(k)+eps {
			return false
		}
	}
	return true
}

// Agreement counts the classes on which a and b chose the same item.
func (a Assignment) Agreement(b Assignment) int {
	n := 0
	for i := range a {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

func (a Assignment) Equal(b Assignment) bool {
	return len(a) == len(b) && a.Agreement(b) == len(a)
}

func (sol *Solution) String() string {
	s := new(strings.Builder)
	s.WriteString(fmt.Sprintf("Total value: %f\n", sol.Value))
	s.WriteString(fmt.Sprintf("Chosen items: %v", []int(sol.Assignment)))
	return s.String()
}

func (inst *Instance) String() string {
	s := new(strings.Builder)
	s.WriteString(fmt.Sprintf("N. classes: %d\n", inst.NumClasses))
	s.WriteString(fmt.Sprintf("N. resources: %d\n", inst.NumResources))
	s.WriteString("Capacities: [ ")
	for k := range inst.NumResources {
		s.WriteString(fmt.Sprintf("%g ", inst.Capacities.AtVec(k)))
	}
	s.WriteString("]\n")

	for i := range inst.NumClasses {
		s.WriteString(fmt.Sprintf("Class %d:\n", i))
		for j := range inst.ItemCount[i] {
			f := inst.flat(i, j)
			s.WriteString(fmt.Sprintf("\tValue: %f, Weights: %v\n",
				inst.Values.AtVec(f), inst.Weights.RawRowView(f)))
		}
	}
	return s.String()
}
