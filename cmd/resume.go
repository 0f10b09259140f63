package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/evolab/nesopt/internal/es"
	"github.com/evolab/nesopt/internal/objective"
	"github.com/evolab/nesopt/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeIters   int
	resumeSeed    int64
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Loads the checkpoint for a job and continues the run locally from the
saved estimate. Only the estimate is resumed, not the random stream, so
the continued run diverges from an uninterrupted one; the best estimate
can only improve. The default seed is derived from the checkpoint so a
resume does not replay the original perturbations.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Additional iterations (default: checkpoint's configured iteration count)")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", 0, "Random seed (default: derived from checkpoint)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not resumable: %w", err)
	}

	cfg := checkpoint.Config

	obj, err := objective.New(cfg.Objective, cfg.Dim, cfg.Target)
	if err != nil {
		return fmt.Errorf("failed to resolve objective: %w", err)
	}

	policyName := cfg.OnDegenerate
	if policyName == "" {
		policyName = "fail"
	}
	policy, err := es.ParseDegeneratePolicy(policyName)
	if err != nil {
		return err
	}

	iterations := resumeIters
	if iterations <= 0 {
		iterations = cfg.Iters
	}

	seed := resumeSeed
	if !cmd.Flags().Changed("seed") {
		// Offset past the original stream so the resumed run does not
		// redraw the same perturbations from the saved estimate.
		seed = cfg.Seed + int64(checkpoint.Iteration) + 1
	}

	strategy, err := es.New(es.Config{
		NPop:    cfg.NPop,
		Sigma:   cfg.Sigma,
		Alpha:   cfg.Alpha,
		Workers: cfg.Workers,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	trace, err := store.NewTraceWriter(resumeDataDir, jobID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace for append: %w", err)
	}
	defer trace.Close()

	baseIteration := checkpoint.Iteration
	observer := func(iter int, pop [][]float64, scores []float64, x []float64) {
		if err := trace.Write(store.TraceEntry{
			Iteration: baseIteration + iter,
			Score:     obj.Eval(x),
			Timestamp: time.Now(),
			Estimate:  append([]float64{}, x...),
		}); err != nil {
			slog.Warn("Failed to write trace entry", "error", err)
		}
	}

	slog.Info("Resuming optimization", "job_id", jobID, "objective", obj.Name,
		"from_iteration", baseIteration, "iters", iterations, "seed", seed)

	result, err := strategy.Run(cmd.Context(), checkpoint.Estimate, obj.Eval, es.RunConfig{
		Iters:        iterations,
		OnDegenerate: policy,
		Observer:     observer,
	})
	if err != nil {
		return fmt.Errorf("resumed run failed: %w", err)
	}

	// Carry the best seen across both runs.
	bestScore := result.BestScore
	bestEstimate := result.BestEstimate
	if checkpoint.BestScore > bestScore && len(checkpoint.BestEstimate) > 0 {
		bestScore = checkpoint.BestScore
		bestEstimate = checkpoint.BestEstimate
	}

	updated := store.NewCheckpoint(
		jobID,
		result.Final,
		bestEstimate,
		bestScore,
		checkpoint.InitialScore,
		baseIteration+result.Iterations,
		cfg,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save updated checkpoint: %w", err)
	}

	fmt.Printf("Resumed from iteration %d, ran %d more\n", baseIteration, result.Iterations)
	fmt.Printf("Estimate: %v (score %.6g)\n", result.Final, result.FinalScore)
	fmt.Printf("Best:     %v (score %.6g)\n", bestEstimate, bestScore)

	return nil
}
