package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/evolab/nesopt/internal/es"
	"github.com/evolab/nesopt/internal/objective"
	"github.com/evolab/nesopt/internal/store"
)

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and the job has checkpointInterval > 0,
// periodic checkpoints are saved; a final checkpoint is always written so
// completed jobs can be resumed or inspected later.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, dataDir, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	cfg := job.Config
	slog.Info("Starting job", "job_id", jobID, "objective", cfg.Objective, "dim", cfg.Dim)

	obj, err := objective.New(cfg.Objective, cfg.Dim, cfg.Target)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to resolve objective: %w", err))
		return err
	}

	policyName := cfg.OnDegenerate
	if policyName == "" {
		policyName = "fail"
	}
	policy, err := es.ParseDegeneratePolicy(policyName)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	strategy, err := es.New(es.Config{
		NPop:    cfg.NPop,
		Sigma:   cfg.Sigma,
		Alpha:   cfg.Alpha,
		Workers: cfg.Workers,
	}, rng)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Starting estimate: configured (resume) or a standard-normal draw
	// from the head of the same seeded stream.
	x0 := append([]float64{}, cfg.Initial...)
	if len(x0) == 0 {
		x0 = make([]float64, cfg.Dim)
		for j := range x0 {
			x0[j] = rng.NormFloat64()
		}
	}

	initialScore := obj.Eval(x0)
	jm.UpdateJob(jobID, func(j *Job) {
		j.InitialScore = initialScore
		j.BestScore = initialScore
		j.Estimate = append([]float64{}, x0...)
		j.BestEstimate = append([]float64{}, x0...)
	})

	var trace *store.TraceWriter
	if dataDir != "" {
		trace, err = store.NewTraceWriter(dataDir, jobID, false)
		if err != nil {
			slog.Warn("Trace disabled", "job_id", jobID, "error", err)
			trace = nil
		} else {
			defer trace.Close()
		}
	}

	start := time.Now()

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// SSE updates are throttled by a ticker rather than emitted per
	// iteration; toy objectives step far faster than clients care about.
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && cfg.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	observer := func(iter int, pop [][]float64, scores []float64, x []float64) {
		score := obj.Eval(x)
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = iter + 1
			// Fresh slices, not reuse: handlers serialize jobs while
			// the worker is still updating them.
			j.Estimate = append([]float64{}, x...)
			if score > j.BestScore {
				j.BestScore = score
				j.BestEstimate = append([]float64{}, x...)
			}
		})
		if trace != nil {
			if err := trace.Write(store.TraceEntry{
				Iteration: iter,
				Score:     score,
				Timestamp: time.Now(),
				Estimate:  append([]float64{}, x...),
			}); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
	}

	result, runErr := strategy.Run(ctx, x0, obj.Eval, es.RunConfig{
		Iters:        cfg.Iters,
		OnDegenerate: policy,
		Observer:     observer,
	})

	close(progressDone)
	close(checkpointDone)
	elapsed := time.Since(start)

	if trace != nil {
		if err := trace.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
		}
	}

	if runErr != nil {
		if ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return ctx.Err()
		}
		markJobFailed(jm, jobID, runErr)
		return runErr
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Estimate = append([]float64{}, result.Final...)
		j.BestEstimate = append([]float64{}, result.BestEstimate...)
		j.BestScore = result.BestScore
		j.InitialScore = result.InitialScore
		j.Iterations = result.Iterations
		j.Skipped = result.Skipped
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	eps := evalsPerSec(result.Iterations, cfg.NPop, elapsed.Seconds())

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_score", result.InitialScore,
		"best_score", result.BestScore,
		"skipped", result.Skipped,
		"evals_per_second", eps,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Iterations:  result.Iterations,
		BestScore:   result.BestScore,
		EvalsPerSec: eps,
		Timestamp:   time.Now(),
	})

	return nil
}

// evalsPerSec estimates objective-evaluation throughput. Each iteration
// evaluates the population plus one reporting call on the estimate.
func evalsPerSec(iterations, npop int, elapsedSec float64) float64 {
	if elapsedSec <= 0 {
		return 0
	}
	return float64(iterations*(npop+1)) / elapsedSec
}

// monitorProgress periodically broadcasts progress events during optimization.
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Iterations:  job.Iterations,
				BestScore:   job.BestScore,
				EvalsPerSec: evalsPerSec(job.Iterations, job.Config.NPop, elapsed),
				Timestamp:   time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during optimization.
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if len(job.Estimate) == 0 {
		slog.Debug("Skipping checkpoint, no estimate yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		append([]float64{}, job.Estimate...),
		append([]float64{}, job.BestEstimate...),
		job.BestScore,
		job.InitialScore,
		job.Iterations,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", job.Iterations,
		"best_score", job.BestScore,
	)

	return nil
}
