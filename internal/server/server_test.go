package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, dataDir string) *Server {
	t.Helper()

	s, err := NewServer(":0", dataDir)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

// waitForJobState polls until the job reaches a terminal state or the
// deadline passes.
func waitForJobState(t *testing.T, s *Server, jobID string, want JobState) *Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, exists := s.jobManager.GetJob(jobID)
		if exists && job.State == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Job %s did not reach state %s", jobID, want)
	return nil
}

func TestServer_CreateJob(t *testing.T) {
	s := newTestServer(t, "")

	config := JobConfig{
		Objective: "sphere",
		Dim:       2,
		NPop:      30,
		Sigma:     0.1,
		Alpha:     0.01,
		Iters:     10,
		Seed:      42,
	}

	body, _ := json.Marshal(config)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	// State should be pending or running (since worker starts immediately)
	if job.State != StatePending && job.State != StateRunning {
		t.Errorf("Expected pending or running state, got %s", job.State)
	}

	waitForJobState(t, s, job.ID, StateCompleted)
}

func TestServer_CreateJobDefaults(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.Config.Objective != "sphere" {
		t.Errorf("Default objective = %s, want sphere", job.Config.Objective)
	}
	if job.Config.Dim != 2 {
		t.Errorf("Default dim = %d, want 2", job.Config.Dim)
	}
	if job.Config.NPop != 50 {
		t.Errorf("Default npop = %d, want 50", job.Config.NPop)
	}
	if job.Config.Iters != 100 {
		t.Errorf("Default iters = %d, want 100", job.Config.Iters)
	}

	waitForJobState(t, s, job.ID, StateCompleted)
}

func TestServer_CreateJobInvalidJSON(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_CreateJobInitialDimMismatch(t *testing.T) {
	s := newTestServer(t, "")

	body := `{"objective":"sphere","dim":2,"initial":[1.0,2.0,3.0]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_ListJobs(t *testing.T) {
	s := newTestServer(t, "")

	s.jobManager.CreateJob(JobConfig{Objective: "sphere", Dim: 2})
	s.jobManager.CreateJob(JobConfig{Objective: "himmelblau", Dim: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	s := newTestServer(t, "")

	job := s.jobManager.CreateJob(JobConfig{
		Objective: "sphere",
		Dim:       2,
		NPop:      30,
		Sigma:     0.1,
		Alpha:     0.01,
		Iters:     10,
		Seed:      42,
	})
	if err := runJob(context.Background(), s.jobManager, nil, "", job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/status", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status["state"] != string(StateCompleted) {
		t.Errorf("state = %v, want completed", status["state"])
	}
	if status["iterations"].(float64) != 10 {
		t.Errorf("iterations = %v, want 10", status["iterations"])
	}
}

func TestServer_GetJobStatusNotFound(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/unknown/status", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_GetJobEstimate(t *testing.T) {
	s := newTestServer(t, "")

	job := s.jobManager.CreateJob(JobConfig{
		Objective: "sphere",
		Dim:       2,
		NPop:      30,
		Sigma:     0.1,
		Alpha:     0.01,
		Iters:     10,
		Seed:      42,
	})
	if err := runJob(context.Background(), s.jobManager, nil, "", job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/estimate", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	estimate, ok := resp["estimate"].([]interface{})
	if !ok || len(estimate) != 2 {
		t.Errorf("estimate = %v, want 2-dimensional vector", resp["estimate"])
	}
}

func TestServer_GetJobEstimatePending(t *testing.T) {
	s := newTestServer(t, "")

	job := s.jobManager.CreateJob(JobConfig{Objective: "sphere", Dim: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/estimate", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for pending job, got %d", w.Code)
	}
}

func TestServer_GetJobTrace(t *testing.T) {
	dataDir := t.TempDir()
	s := newTestServer(t, dataDir)

	job := s.jobManager.CreateJob(JobConfig{
		Objective: "sphere",
		Dim:       2,
		NPop:      30,
		Sigma:     0.1,
		Alpha:     0.01,
		Iters:     12,
		Seed:      42,
	})
	if err := runJob(context.Background(), s.jobManager, s.checkpointStore, dataDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/trace", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var entries []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(entries) != 12 {
		t.Errorf("Expected 12 trace entries, got %d", len(entries))
	}
}

func TestServer_GetJobTraceDisabled(t *testing.T) {
	s := newTestServer(t, "")

	job := s.jobManager.CreateJob(JobConfig{Objective: "sphere", Dim: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/trace", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without persistence, got %d", w.Code)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleJobs(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestServer_IndexPage(t *testing.T) {
	s := newTestServer(t, "")

	s.jobManager.CreateJob(JobConfig{Objective: "sphere", Dim: 2})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	s.handleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "sphere") {
		t.Error("Index page should list the created job's objective")
	}
}
