package mmkp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

func errorCoalesce(args ...error) error {
	for _, e := range args {
		if e != nil {
			return e
		}
	}
	return nil
}

// tokenReader walks a whitespace-separated token stream. The instance
// format does not care about line boundaries.
type tokenReader struct {
	scanner *bufio.Scanner
}

func newTokenReader(file *os.File) *tokenReader {
	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)
	return &tokenReader{scanner: scanner}
}

func (tr *tokenReader) nextInt() (int, error) {
	if !tr.scanner.Scan() {
		return 0, fmt.Errorf("unexpected end of instance file")
	}
	return strconv.Atoi(tr.scanner.Text())
}

func (tr *tokenReader) nextFloat() (float64, error) {
	if !tr.scanner.Scan() {
		return 0, fmt.Errorf("unexpected end of instance file")
	}
	return strconv.ParseFloat(tr.scanner.Text(), 64)
}

func (inst *Instance) parseHeader(tr *tokenReader) error {
	numClasses, err1 := tr.nextInt()
	itemsPerClass, err2 := tr.nextInt()
	numResources, err3 := tr.nextInt()
	if err := errorCoalesce(err1, err2, err3); err != nil {
		return fmt.Errorf("Error while parsing header: %v", err)
	}
	if numClasses < 1 || itemsPerClass < 1 || numResources < 1 {
		return fmt.Errorf("Error while parsing header: non-positive dimension")
	}

	inst.NumClasses = numClasses
	inst.NumResources = numResources
	inst.ItemCount = make([]int, numClasses)
	inst.Offset = make([]int, numClasses)
	for i := 0; i < numClasses; i++ {
		inst.ItemCount[i] = itemsPerClass
		inst.Offset[i] = i * itemsPerClass
	}
	inst.TotalItems = numClasses * itemsPerClass
	return nil
}

func (inst *Instance) parseCapacities(tr *tokenReader) error {
	inst.Capacities = mat.NewVecDense(inst.NumResources, nil)
	for k := range inst.NumResources {
		c, err := tr.nextInt()
		if err != nil {
			return fmt.Errorf("Error while parsing capacity %d: %v", k, err)
		}
		if c < 0 {
			return fmt.Errorf("Error while parsing capacity %d: negative value", k)
		}
		inst.Capacities.SetVec(k, float64(c))
	}
	return nil
}

func (inst *Instance) parseClasses(tr *tokenReader) error {
	inst.Values = mat.NewVecDense(inst.TotalItems, nil)
	inst.Weights = mat.NewDense(inst.TotalItems, inst.NumResources, nil)

	for i := range inst.NumClasses {
		echo, err := tr.nextInt()
		if err != nil {
			return fmt.Errorf("Error while parsing class %d: %v", i, err)
		}
		if echo != i+1 {
			return fmt.Errorf("Error while parsing class %d: index echo %d", i, echo)
		}
		for j := range inst.ItemCount[i] {
			f := inst.flat(i, j)
			v, err := tr.nextFloat()
			if err != nil {
				return fmt.Errorf("Error while parsing class %d item %d: %v", i, j, err)
			}
			inst.Values.SetVec(f, v)
			for k := range inst.NumResources {
				w, err := tr.nextInt()
				if err != nil {
					return fmt.Errorf("Error while parsing class %d item %d: %v", i, j, err)
				}
				if w < 0 {
					return fmt.Errorf("Error while parsing class %d item %d: negative weight", i, j)
				}
				inst.Weights.Set(f, k, float64(w))
			}
		}
	}
	return nil
}

func LoadInstance(filename string) (*Instance, error) {
	inst := new(Instance)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tr := newTokenReader(file)
	err = errorCoalesce(
		inst.parseHeader(tr),
		inst.parseCapacities(tr),
		inst.parseClasses(tr),
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// NewInstance builds an instance from ragged per-class item data.
// values[i][j] is item j of class i, weights[i][j] its per-resource
// usage. Every class must carry at least one item and every weight row
// must match the resource count.
func NewInstance(values [][]float64, weights [][][]float64, capacities []float64) (*Instance, error) {
	if len(values) == 0 || len(capacities) == 0 {
		return nil, fmt.Errorf("instance needs at least one class and one resource")
	}
	inst := &Instance{
		NumClasses:   len(values),
		NumResources: len(capacities),
		ItemCount:    make([]int, len(values)),
		Offset:       make([]int, len(values)),
	}
	for i, class := range values {
		if len(class) == 0 {
			return nil, fmt.Errorf("class %d has no items", i)
		}
		inst.Offset[i] = inst.TotalItems
		inst.ItemCount[i] = len(class)
		inst.TotalItems += len(class)
	}

	inst.Values = mat.NewVecDense(inst.TotalItems, nil)
	inst.Weights = mat.NewDense(inst.TotalItems, inst.NumResources, nil)
	inst.Capacities = mat.NewVecDense(inst.NumResources, capacities)

	for i, class := range values {
		if len(weights[i]) != len(class) {
			return nil, fmt.Errorf("class %d: %d weight rows for %d items", i, len(weights[i]), len(class))
		}
		for j, v := range class {
			f := inst.flat(i, j)
			if len(weights[i][j]) != inst.NumResources {
				return nil, fmt.Errorf("class %d item %d: %d weights for %d resources", i, j, len(weights[i][j]), inst.NumResources)
			}
			inst.Values.SetVec(f, v)
			for k, w := range weights[i][j] {
				if w < 0 {
					return nil, fmt.Errorf("class %d item %d: negative weight", i, j)
				}
				inst.Weights.Set(f, k, w)
			}
		}
	}
	return inst, nil
}
