package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"mmkp_corridor/src/mmkp"
)

func main() {
	app := &cli.App{
		Name:   "mmkp_solve",
		Usage:  "Hybrid Lagrangian/corridor solver for the multiple-choice multidimensional knapsack problem",
		Flags:  flags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:     "instance",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "instance file",
	},
	&cli.StringFlag{
		Name:    "algorithm",
		Aliases: []string{"a"},
		Value:   "lagrangian",
		Usage:   "algorithm: lagrangian, genetic or mip",
	},
	&cli.Float64Flag{
		Name:    "corridor",
		Aliases: []string{"c"},
		Value:   0.9,
		Usage:   "base corridor width in (0,1]; 1.0 pins the repair to the relaxed solution",
	},
	&cli.BoolFlag{
		Name:    "zeros",
		Aliases: []string{"z"},
		Value:   true,
		Usage:   "fix the worst reduced-cost items to zero during repairs",
	},
	&cli.BoolFlag{
		Name:    "ones",
		Aliases: []string{"o"},
		Value:   true,
		Usage:   "force the best reduced-cost items towards one during repairs",
	},
	&cli.IntFlag{
		Name:    "pool",
		Aliases: []string{"p"},
		Value:   3,
		Usage:   "base oracle solution budget",
	},
	&cli.IntFlag{
		Name:  "restarts",
		Value: 3,
		Usage: "number of Lagrangian macro-iterations",
	},
	&cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "seed of the multiplier perturbation",
	},
	&cli.IntFlag{
		Name:  "threads",
		Value: runtime.NumCPU(),
		Usage: "decoding threads of the genetic algorithm",
	},
}

func run(c *cli.Context) error {
	inst, err := mmkp.LoadInstance(c.String("instance"))
	if err != nil {
		return err
	}

	params := mmkp.DefaultParams()
	params.CorridorWidth = c.Float64("corridor")
	params.Fix2Zero = c.Bool("zeros")
	params.Fix2One = c.Bool("ones")
	params.NSol = c.Int("pool")
	params.Restarts = c.Int("restarts")
	params.Seed = c.Int64("seed")
	if params.CorridorWidth <= 0 || params.CorridorWidth > 1 {
		return fmt.Errorf("corridor width %f outside (0,1]", params.CorridorWidth)
	}

	var sol *mmkp.Solution
	switch c.String("algorithm") {
	case "lagrangian":
		sol, err = mmkp.NewSolver(inst, params, mmkp.HighsOracle{}).Solve()
	case "genetic":
		sol = inst.GeneticSolution(2000, c.Int("threads"))
	case "mip":
		sol, err = mmkp.SolveMIP(inst, mmkp.HighsOracle{}, mmkp.SolveBudget{})
	default:
		return fmt.Errorf("unknown algorithm %q", c.String("algorithm"))
	}
	if err != nil {
		if errors.Is(err, mmkp.ErrNoFixableWorst) {
			return cli.Exit(err.Error(), 123)
		}
		if errors.Is(err, mmkp.ErrNoFixableBest) {
			return cli.Exit(err.Error(), 144)
		}
		return err
	}

	fmt.Println(sol)
	return nil
}
