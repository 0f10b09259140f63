package opt

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/evolab/nesopt/internal/es"
)

// ESAdapter runs the natural-evolution-strategy core through the
// Optimizer interface. The core maximizes, so eval is negated; bounds are
// used only to pick the starting point (the midpoint of the box), the
// strategy itself is unconstrained.
type ESAdapter struct {
	cfg   es.Config
	iters int
	seed  int64
}

// NewES creates an ES optimizer adapter.
func NewES(cfg es.Config, iters int, seed int64) Optimizer {
	return &ESAdapter{cfg: cfg, iters: iters, seed: seed}
}

// Run executes the ES run loop against the negated eval.
func (a *ESAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	strategy, err := es.New(a.cfg, rand.New(rand.NewSource(a.seed)))
	if err != nil {
		slog.Error("Invalid ES config for baseline run", "error", err)
		return make([]float64, dim), eval(make([]float64, dim))
	}

	x0 := make([]float64, dim)
	for j := 0; j < dim; j++ {
		x0[j] = (lower[j] + upper[j]) / 2
	}

	score := func(x []float64) float64 { return -eval(x) }

	result, err := strategy.Run(context.Background(), x0, score, es.RunConfig{
		Iters:        a.iters,
		OnDegenerate: es.DegenerateSkip,
	})
	if err != nil {
		slog.Error("ES baseline run failed", "error", err)
		return x0, eval(x0)
	}

	return result.BestEstimate, -result.BestScore
}
