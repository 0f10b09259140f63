package es

import (
	"fmt"
	"math/rand"

	"github.com/evolab/nesopt/internal/objective"
	"gonum.org/v1/gonum/stat"
)

// Config holds the strategy parameters for one run.
type Config struct {
	// NPop is the population size sampled around the estimate each step.
	// Must be at least 2 (the sample variance is undefined for one point).
	NPop int

	// Sigma is the standard deviation of the Gaussian perturbations.
	// Must be positive.
	Sigma float64

	// Alpha is the step size applied to the gradient estimate.
	// Must be non-negative; zero disables movement entirely.
	Alpha float64

	// Workers is the number of goroutines used for candidate evaluation.
	// Values below 2 keep evaluation sequential. The aggregation is
	// order-independent, so the result does not depend on this setting.
	Workers int
}

func (c Config) validate() error {
	if c.NPop < 2 {
		return &InvalidParameterError{Param: "npop", Reason: fmt.Sprintf("must be >= 2, got %d", c.NPop)}
	}
	if c.Sigma <= 0 {
		return &InvalidParameterError{Param: "sigma", Reason: fmt.Sprintf("must be > 0, got %g", c.Sigma)}
	}
	if c.Alpha < 0 {
		return &InvalidParameterError{Param: "alpha", Reason: fmt.Sprintf("must be >= 0, got %g", c.Alpha)}
	}
	return nil
}

// Strategy implements a natural-evolution-strategy gradient estimator.
// Each step samples a Gaussian population around the current estimate,
// scores it, normalizes the scores, and moves the estimate along the
// fitness-weighted average of the perturbation directions.
//
// The random source is injected so runs are reproducible; Strategy itself
// holds no other state and a single step never mutates its inputs.
type Strategy struct {
	cfg Config
	rng *rand.Rand
}

// New creates a strategy after validating the config.
// The rng must not be nil and must not be shared with other consumers
// if deterministic output is required.
func New(cfg Config, rng *rand.Rand) (*Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, &InvalidParameterError{Param: "rng", Reason: "must not be nil"}
	}
	return &Strategy{cfg: cfg, rng: rng}, nil
}

// Config returns the strategy parameters.
func (s *Strategy) Config() Config {
	return s.cfg
}

// Step advances the estimate by one iteration and returns the new
// estimate as a fresh slice of the same dimension.
func (s *Strategy) Step(x []float64, f objective.Func) ([]float64, error) {
	next, _, _, _, err := s.StepDetail(x, f)
	return next, err
}

// StepDetail is Step plus the per-iteration intermediates: the sampled
// candidate population, its raw scores, and the gradient estimate.
// Visualization and trace consumers use these; Step discards them.
func (s *Strategy) StepDetail(x []float64, f objective.Func) (next []float64, pop [][]float64, scores []float64, grad []float64, err error) {
	dim := len(x)
	if dim < 1 {
		return nil, nil, nil, nil, &InvalidParameterError{Param: "x", Reason: "must have dimension >= 1"}
	}

	npop := s.cfg.NPop
	sigma := s.cfg.Sigma

	// Perturbation rows are drawn up front so the RNG stream depends only
	// on the seed, not on evaluation scheduling.
	noise := make([][]float64, npop)
	pop = make([][]float64, npop)
	for i := 0; i < npop; i++ {
		noise[i] = make([]float64, dim)
		pop[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			noise[i][j] = s.rng.NormFloat64()
			pop[i][j] = x[j] + sigma*noise[i][j]
		}
	}

	scores = s.evaluate(pop, f)

	mean := stat.Mean(scores, nil)
	// Sample standard deviation (n-1 divisor).
	std := stat.StdDev(scores, nil)
	if std == 0 {
		return nil, pop, scores, nil, &DegenerateFitnessError{NPop: npop, Score: scores[0]}
	}

	normalized := make([]float64, npop)
	for i, r := range scores {
		normalized[i] = (r - mean) / std
	}

	grad = make([]float64, dim)
	for j := 0; j < dim; j++ {
		var sum float64
		for i := 0; i < npop; i++ {
			sum += noise[i][j] * normalized[i]
		}
		grad[j] = sum / float64(npop)
	}

	scale := s.cfg.Alpha / (float64(npop) * sigma)
	next = make([]float64, dim)
	for j := 0; j < dim; j++ {
		next[j] = x[j] + scale*grad[j]
	}

	return next, pop, scores, grad, nil
}
