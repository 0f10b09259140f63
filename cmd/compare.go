package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/evolab/nesopt/internal/es"
	"github.com/evolab/nesopt/internal/objective"
	"github.com/evolab/nesopt/internal/opt"
	"github.com/spf13/cobra"
)

var (
	cmpObjective string
	cmpDim       int
	cmpTarget    []float64
	cmpNPop      int
	cmpSigma     float64
	cmpAlpha     float64
	cmpIters     int
	cmpSeed      int64
	cmpLower     float64
	cmpUpper     float64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the ES strategy against the Mayfly baseline",
	Long: `Runs the evolution strategy and the external Mayfly optimizer on the
same objective with the same budget and reports both results side by side.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&cmpObjective, "objective", "rastrigin", "Objective function")
	compareCmd.Flags().IntVar(&cmpDim, "dim", 2, "Dimension of the estimate vector")
	compareCmd.Flags().Float64SliceVar(&cmpTarget, "target", nil, "Optimum location for shifted objectives")
	compareCmd.Flags().IntVar(&cmpNPop, "npop", 50, "Population size (both optimizers)")
	compareCmd.Flags().Float64Var(&cmpSigma, "sigma", 0.1, "ES perturbation standard deviation")
	compareCmd.Flags().Float64Var(&cmpAlpha, "alpha", 0.01, "ES step size")
	compareCmd.Flags().IntVar(&cmpIters, "iters", 500, "Iteration budget (both optimizers)")
	compareCmd.Flags().Int64Var(&cmpSeed, "seed", 42, "Random seed")
	compareCmd.Flags().Float64Var(&cmpLower, "lower", -5.12, "Lower bound (all dimensions)")
	compareCmd.Flags().Float64Var(&cmpUpper, "upper", 5.12, "Upper bound (all dimensions)")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	obj, err := objective.New(cmpObjective, cmpDim, cmpTarget)
	if err != nil {
		return fmt.Errorf("failed to resolve objective: %w", err)
	}

	if cmpUpper <= cmpLower {
		return fmt.Errorf("upper bound %g must exceed lower bound %g", cmpUpper, cmpLower)
	}

	lower := make([]float64, cmpDim)
	upper := make([]float64, cmpDim)
	for j := 0; j < cmpDim; j++ {
		lower[j] = cmpLower
		upper[j] = cmpUpper
	}

	// The adapters minimize; the objectives maximize.
	eval := func(x []float64) float64 { return -obj.Eval(x) }

	optimizers := []struct {
		name string
		opt  opt.Optimizer
	}{
		{"es", opt.NewES(es.Config{NPop: cmpNPop, Sigma: cmpSigma, Alpha: cmpAlpha}, cmpIters, cmpSeed)},
		{"mayfly", opt.NewMayfly(cmpIters, cmpNPop, cmpSeed)},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTIMIZER\tBEST SCORE\tBEST ESTIMATE\tELAPSED")

	for _, entry := range optimizers {
		slog.Info("Running optimizer", "optimizer", entry.name, "objective", obj.Name,
			"dim", cmpDim, "iters", cmpIters)

		start := time.Now()
		best, cost := entry.opt.Run(eval, lower, upper, cmpDim)
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%.6g\t%v\t%s\n", entry.name, -cost, best, elapsed.Round(time.Millisecond))
	}

	return w.Flush()
}
