package opt

// Optimizer is the common contract for the baseline comparison between
// the in-repo ES strategy and external metaheuristics. The convention is
// minimization, matching the external libraries; adapters over
// maximization objectives negate their eval.
type Optimizer interface {
	// Run minimizes eval over a box [lower, upper] of the given
	// dimensionality and returns the best parameters and best cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
