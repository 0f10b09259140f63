package es

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evolab/nesopt/internal/objective"
)

// DegeneratePolicy selects how a run reacts when a whole population
// scores identically and the fitness normalization is undefined.
type DegeneratePolicy int

const (
	// DegenerateFail aborts the run with a DegenerateFitnessError.
	DegenerateFail DegeneratePolicy = iota

	// DegenerateSkip keeps the current estimate for that iteration and
	// continues; the skip is counted in the result.
	DegenerateSkip
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateFail:
		return "fail"
	case DegenerateSkip:
		return "skip"
	default:
		return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
	}
}

// ParseDegeneratePolicy resolves a policy from its flag value.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(s) {
	case "fail":
		return DegenerateFail, nil
	case "skip":
		return DegenerateSkip, nil
	default:
		return DegenerateFail, fmt.Errorf("unknown degenerate-fitness policy: %s (want fail or skip)", s)
	}
}

// Observer receives the sampled population, its raw scores, and the
// estimate after each iteration. The slices are owned by the run loop and
// must not be retained across calls.
type Observer func(iter int, pop [][]float64, scores []float64, x []float64)

// RunConfig drives the caller-side iteration loop around Strategy.Step.
type RunConfig struct {
	// Iters is the fixed number of iterations to run. Must be >= 1.
	Iters int

	// OnDegenerate selects the degenerate-fitness policy.
	OnDegenerate DegeneratePolicy

	// Observer, if set, is invoked after every iteration, including
	// skipped ones.
	Observer Observer
}

// RunResult summarizes a completed run.
type RunResult struct {
	Initial      []float64
	InitialScore float64
	Final        []float64
	FinalScore   float64
	BestEstimate []float64
	BestScore    float64
	Iterations   int
	Skipped      int
}

// Run iterates the strategy for a fixed number of steps starting at x0.
// One extra objective evaluation per iteration scores the updated
// estimate for reporting; the step computation itself is untouched.
// The context is checked between iterations only.
func (s *Strategy) Run(ctx context.Context, x0 []float64, f objective.Func, rc RunConfig) (*RunResult, error) {
	if rc.Iters < 1 {
		return nil, &InvalidParameterError{Param: "iters", Reason: fmt.Sprintf("must be >= 1, got %d", rc.Iters)}
	}
	if len(x0) < 1 {
		return nil, &InvalidParameterError{Param: "x0", Reason: "must have dimension >= 1"}
	}

	x := append([]float64{}, x0...)
	initialScore := f(x)

	tracker := NewScoreTracker()
	tracker.Update(initialScore, x)

	slog.Debug("Starting run", "dim", len(x), "iters", rc.Iters,
		"npop", s.cfg.NPop, "sigma", s.cfg.Sigma, "alpha", s.cfg.Alpha)

	result := &RunResult{
		Initial:      append([]float64{}, x0...),
		InitialScore: initialScore,
		FinalScore:   initialScore,
	}

	for iter := 0; iter < rc.Iters; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, pop, scores, _, err := s.StepDetail(x, f)
		if err != nil {
			var degenerate *DegenerateFitnessError
			if errors.As(err, &degenerate) && rc.OnDegenerate == DegenerateSkip {
				result.Skipped++
				result.Iterations++
				slog.Warn("Skipping degenerate iteration", "iter", iter, "score", degenerate.Score)
				if rc.Observer != nil {
					rc.Observer(iter, pop, scores, x)
				}
				continue
			}
			return nil, fmt.Errorf("step %d: %w", iter, err)
		}

		x = next
		result.Iterations++
		result.FinalScore = f(x)
		tracker.Update(result.FinalScore, x)

		if rc.Observer != nil {
			rc.Observer(iter, pop, scores, x)
		}
	}

	result.Final = append([]float64{}, x...)
	result.BestEstimate = tracker.BestEstimate()
	result.BestScore = tracker.BestScore()

	slog.Debug("Run complete", "iterations", result.Iterations, "skipped", result.Skipped,
		"initial_score", result.InitialScore, "final_score", result.FinalScore, "best_score", result.BestScore)

	return result, nil
}
