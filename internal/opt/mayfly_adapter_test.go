package opt

import (
	"math"
	"testing"
)

// sphereCost is f(x) = sum(x_i^2), minimum 0 at the origin. Minimize
// convention, matching the Optimizer interface.
func sphereCost(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func symmetricBox(dim int, radius float64) (lower, upper []float64) {
	lower = make([]float64, dim)
	upper = make([]float64, dim)
	for i := range lower {
		lower[i] = -radius
		upper[i] = radius
	}
	return lower, upper
}

func TestMayflyAdapterConvergesOnSphere(t *testing.T) {
	optimizer := NewMayfly(100, 20, 42) // maxIters, popSize, seed

	dim := 3
	lower, upper := symmetricBox(dim, 10)

	best, cost := optimizer.Run(sphereCost, lower, upper, dim)

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}

	if cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}

	for i, v := range best {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	dim := 2
	lower, upper := symmetricBox(dim, 5)

	// popSize must be >= 20 for mayfly v0.1.0
	_, cost1 := NewMayfly(50, 20, 123).Run(sphereCost, lower, upper, dim)
	_, cost2 := NewMayfly(50, 20, 123).Run(sphereCost, lower, upper, dim)

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}
