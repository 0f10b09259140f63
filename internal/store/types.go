package store

import (
	"fmt"
	"time"
)

// JobConfig holds configuration for an optimization job (checkpoint copy).
// This avoids import cycles with the server package.
type JobConfig struct {
	Objective          string    `json:"objective"`
	Dim                int       `json:"dim"`
	Target             []float64 `json:"target,omitempty"`
	Initial            []float64 `json:"initial,omitempty"` // starting estimate; empty = standard-normal draw
	NPop               int       `json:"npop"`
	Sigma              float64   `json:"sigma"`
	Alpha              float64   `json:"alpha"`
	Iters              int       `json:"iters"`
	Seed               int64     `json:"seed"`
	Workers            int       `json:"workers,omitempty"`
	OnDegenerate       string    `json:"onDegenerate,omitempty"`       // fail or skip
	CheckpointInterval int       `json:"checkpointInterval,omitempty"` // Checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved optimization state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// A checkpoint saves the current and best estimate vectors, not the random
// stream that produced them. Resuming restarts the strategy with a fresh
// seed (or the configured seed) from the saved estimate, so a resumed run
// diverges from an uninterrupted one; the best score can only improve
// because the best estimate is carried over. Saving the RNG stream would
// tie the format to one generator implementation for marginal benefit.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job.
	JobID string `json:"jobId"`

	// Estimate is the current estimate vector at checkpoint time.
	Estimate []float64 `json:"estimate"`

	// BestEstimate is the estimate that achieved BestScore.
	BestEstimate []float64 `json:"bestEstimate,omitempty"`

	// BestScore is the best objective score seen so far (higher is better).
	BestScore float64 `json:"bestScore"`

	// InitialScore is the score of the starting estimate, for tracking
	// improvement.
	InitialScore float64 `json:"initialScore"`

	// Iteration is the iteration count when this checkpoint was created.
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during
	// resume: resumed jobs must target the same landscape.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the
// estimate vectors. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestScore float64   `json:"bestScore"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Objective string    `json:"objective"`
	Dim       int       `json:"dim"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, estimate, bestEstimate []float64, bestScore, initialScore float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:        jobID,
		Estimate:     estimate,
		BestEstimate: bestEstimate,
		BestScore:    bestScore,
		InitialScore: initialScore,
		Iteration:    iteration,
		Timestamp:    time.Now(),
		Config:       config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestScore: c.BestScore,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Objective: c.Config.Objective,
		Dim:       c.Config.Dim,
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.Estimate) == 0 {
		return &ValidationError{Field: "Estimate", Reason: "cannot be empty"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Objective == "" {
		return &ValidationError{Field: "Config.Objective", Reason: "cannot be empty"}
	}
	if c.Config.Dim < 1 {
		return &ValidationError{Field: "Config.Dim", Reason: "must be positive"}
	}
	if c.Config.Iters < 1 {
		return &ValidationError{Field: "Config.Iters", Reason: "must be positive"}
	}
	if c.Config.NPop < 2 {
		return &ValidationError{Field: "Config.NPop", Reason: "must be at least 2"}
	}
	if c.Config.Sigma <= 0 {
		return &ValidationError{Field: "Config.Sigma", Reason: "must be positive"}
	}
	if len(c.Estimate) != c.Config.Dim {
		return &ValidationError{
			Field:  "Estimate",
			Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", c.Config.Dim, len(c.Estimate)),
		}
	}
	if len(c.BestEstimate) != 0 && len(c.BestEstimate) != c.Config.Dim {
		return &ValidationError{
			Field:  "BestEstimate",
			Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", c.Config.Dim, len(c.BestEstimate)),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. The objective landscape must be identical; strategy parameters
// (npop, sigma, alpha) may change between runs.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Objective != config.Objective {
		return &CompatibilityError{
			Field:    "Objective",
			Expected: c.Config.Objective,
			Actual:   config.Objective,
		}
	}
	if c.Config.Dim != config.Dim {
		return &CompatibilityError{
			Field:    "Dim",
			Expected: fmt.Sprintf("%d", c.Config.Dim),
			Actual:   fmt.Sprintf("%d", config.Dim),
		}
	}
	if len(c.Config.Target) != len(config.Target) {
		return &CompatibilityError{
			Field:    "Target",
			Expected: fmt.Sprintf("%v", c.Config.Target),
			Actual:   fmt.Sprintf("%v", config.Target),
		}
	}
	for i := range c.Config.Target {
		if c.Config.Target[i] != config.Target[i] {
			return &CompatibilityError{
				Field:    "Target",
				Expected: fmt.Sprintf("%v", c.Config.Target),
				Actual:   fmt.Sprintf("%v", config.Target),
			}
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
