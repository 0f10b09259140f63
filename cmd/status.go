package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}

	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		config, _ := job["config"].(map[string]interface{})
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		fmt.Printf("  Objective: %v (dim %v)\n", config["objective"], config["dim"])
		if iterations, ok := job["iterations"].(float64); ok && iterations > 0 {
			fmt.Printf("  Score: %.6g -> %.6g\n", job["initialScore"], job["bestScore"])
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	config, _ := status["config"].(map[string]interface{})
	fmt.Println("Configuration:")
	fmt.Printf("  Objective: %v\n", config["objective"])
	fmt.Printf("  Dimension: %v\n", config["dim"])
	fmt.Printf("  Population: %v\n", config["npop"])
	fmt.Printf("  Sigma: %v\n", config["sigma"])
	fmt.Printf("  Alpha: %v\n", config["alpha"])
	fmt.Printf("  Iterations: %v\n", config["iters"])
	fmt.Println()

	fmt.Println("Progress:")
	if iterations, ok := status["iterations"].(float64); ok {
		fmt.Printf("  Iterations: %.0f\n", iterations)
	}
	if initialScore, ok := status["initialScore"].(float64); ok {
		fmt.Printf("  Initial Score: %.6g\n", initialScore)
	}
	if bestScore, ok := status["bestScore"].(float64); ok {
		fmt.Printf("  Best Score: %.6g\n", bestScore)
	}
	if estimate, ok := status["bestEstimate"].([]interface{}); ok && len(estimate) > 0 {
		fmt.Printf("  Best Estimate: %v\n", estimate)
	}
	if skipped, ok := status["skipped"].(float64); ok && skipped > 0 {
		fmt.Printf("  Skipped (degenerate): %.0f\n", skipped)
	}

	if elapsedSec, ok := status["elapsed"].(float64); ok {
		elapsed := time.Duration(elapsedSec * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}

	if eps, ok := status["evalsPerSec"].(float64); ok && eps > 0 {
		fmt.Printf("  Throughput: %.0f evals/sec\n", eps)
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
