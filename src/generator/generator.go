package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
)

// GenerateMMKPInstance writes a random instance in the solver's input
// format: header, capacities, then per class an index echo followed by
// each item's value and per-resource weights. Tightness scales the
// capacities relative to the expected usage of a uniform assignment.
func GenerateMMKPInstance(numClasses, itemsPerClass, numResources int, tightness float64) string {
	const maxWeight = 10

	s := new(strings.Builder)
	fmt.Fprintf(s, "%d %d %d\n", numClasses, itemsPerClass, numResources)

	expected := float64(numClasses) * float64(maxWeight+1) / 2
	for r := 0; r < numResources; r++ {
		fmt.Fprintf(s, "%d ", int(math.Max(1, math.Round(tightness*expected))))
	}
	s.WriteRune('\n')

	for i := 0; i < numClasses; i++ {
		fmt.Fprintf(s, "%d\n", i+1)
		for j := 0; j < itemsPerClass; j++ {
			fmt.Fprintf(s, "%.2f ", 10+90*rand.Float64())
			for r := 0; r < numResources; r++ {
				fmt.Fprintf(s, "%d ", 1+rand.Intn(maxWeight))
			}
			s.WriteRune('\n')
		}
	}
	return s.String()
}

func main() {
	var outPath string
	var numClasses, itemsPerClass, numResources int
	var tightness float64

	flag.StringVar(&outPath, "out", "out.txt", "The output file")
	flag.IntVar(&numClasses, "classes", 0, "The number of classes")
	flag.IntVar(&itemsPerClass, "items", 0, "The number of items per class")
	flag.IntVar(&numResources, "resources", 0, "The number of resources")
	flag.Float64Var(&tightness, "tightness", 0, "The capacity tightness ratio")

	flag.Parse()

	err := false
	if numClasses == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of classes")
		err = true
	}
	if itemsPerClass == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of items per class")
		err = true
	}
	if numResources == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of resources")
		err = true
	}
	if tightness == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the capacity tightness ratio")
		err = true
	}

	if err {
		os.Exit(1)
	}

	os.WriteFile(
		outPath,
		[]byte(GenerateMMKPInstance(numClasses, itemsPerClass, numResources, tightness)),
		0666,
	)
}
