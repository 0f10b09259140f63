package store

import (
	"testing"
	"time"
)

func validTestConfig() JobConfig {
	return JobConfig{
		Objective: "sphere",
		Dim:       2,
		Target:    []float64{3.5, -0.2},
		NPop:      50,
		Sigma:     0.1,
		Alpha:     0.001,
		Iters:     100,
		Seed:      42,
	}
}

func validTestCheckpoint() *Checkpoint {
	return &Checkpoint{
		JobID:        "job-1",
		Estimate:     []float64{1.2, -0.4},
		BestEstimate: []float64{1.3, -0.3},
		BestScore:    -4.9,
		InitialScore: -12.29,
		Iteration:    40,
		Timestamp:    time.Now(),
		Config:       validTestConfig(),
	}
}

func TestCheckpointValidate(t *testing.T) {
	if err := validTestCheckpoint().Validate(); err != nil {
		t.Fatalf("valid checkpoint rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Checkpoint)
	}{
		{"empty job id", func(c *Checkpoint) { c.JobID = "" }},
		{"empty estimate", func(c *Checkpoint) { c.Estimate = nil }},
		{"negative iteration", func(c *Checkpoint) { c.Iteration = -1 }},
		{"zero timestamp", func(c *Checkpoint) { c.Timestamp = time.Time{} }},
		{"empty objective", func(c *Checkpoint) { c.Config.Objective = "" }},
		{"zero dim", func(c *Checkpoint) { c.Config.Dim = 0 }},
		{"zero iters", func(c *Checkpoint) { c.Config.Iters = 0 }},
		{"npop too small", func(c *Checkpoint) { c.Config.NPop = 1 }},
		{"zero sigma", func(c *Checkpoint) { c.Config.Sigma = 0 }},
		{"estimate dim mismatch", func(c *Checkpoint) { c.Estimate = []float64{1} }},
		{"best estimate dim mismatch", func(c *Checkpoint) { c.BestEstimate = []float64{1, 2, 3} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkpoint := validTestCheckpoint()
			tt.mutate(checkpoint)
			if err := checkpoint.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCheckpointValidateOptionalBest(t *testing.T) {
	checkpoint := validTestCheckpoint()
	checkpoint.BestEstimate = nil
	if err := checkpoint.Validate(); err != nil {
		t.Errorf("checkpoint without best estimate should validate: %v", err)
	}
}

func TestCheckpointIsCompatible(t *testing.T) {
	checkpoint := validTestCheckpoint()

	if err := checkpoint.IsCompatible(validTestConfig()); err != nil {
		t.Errorf("identical config should be compatible: %v", err)
	}

	// Strategy parameters may change between runs.
	tuned := validTestConfig()
	tuned.NPop = 100
	tuned.Sigma = 0.2
	tuned.Alpha = 0.01
	tuned.Seed = 7
	if err := checkpoint.IsCompatible(tuned); err != nil {
		t.Errorf("tuned strategy parameters should be compatible: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*JobConfig)
	}{
		{"different objective", func(c *JobConfig) { c.Objective = "rastrigin" }},
		{"different dim", func(c *JobConfig) { c.Dim = 3 }},
		{"different target length", func(c *JobConfig) { c.Target = []float64{1} }},
		{"different target value", func(c *JobConfig) { c.Target = []float64{3.5, 0.2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validTestConfig()
			tt.mutate(&config)
			if err := checkpoint.IsCompatible(config); err == nil {
				t.Error("expected compatibility error")
			}
		})
	}
}

func TestCheckpointToInfo(t *testing.T) {
	checkpoint := validTestCheckpoint()
	info := checkpoint.ToInfo()

	if info.JobID != checkpoint.JobID {
		t.Error("JobID not carried over")
	}
	if info.BestScore != checkpoint.BestScore {
		t.Error("BestScore not carried over")
	}
	if info.Iteration != checkpoint.Iteration {
		t.Error("Iteration not carried over")
	}
	if info.Objective != "sphere" || info.Dim != 2 {
		t.Error("objective metadata not carried over")
	}
}

func TestNewCheckpoint(t *testing.T) {
	before := time.Now()
	checkpoint := NewCheckpoint("job-2", []float64{1, 2}, []float64{1, 2}, -3, -10, 5, validTestConfig())

	if checkpoint.Timestamp.Before(before) {
		t.Error("timestamp should be set to now")
	}
	if err := checkpoint.Validate(); err != nil {
		t.Errorf("freshly built checkpoint should validate: %v", err)
	}
}
