package runs

import (
	"time"

	"docintel-backend/internal/agent"
)

// StartRunResponse acknowledges an accepted run request.
type StartRunResponse struct {
	RunID     string    `json:"runId"`
	Status    string    `json:"status"`
	Query     string    `json:"query"`
	StartedAt time.Time `json:"startedAt"`
}

// RunResponse is the outward-facing representation of a run.
type RunResponse struct {
	RunID           string             `json:"runId"`
	Query           string             `json:"query"`
	Status          string             `json:"status"`
	Steps           []Step             `json:"steps"`
	CurrentStep     int                `json:"currentStep"`
	TotalSteps      int                `json:"totalSteps"`
	Results         map[string]any     `json:"results,omitempty"`
	FinalAnswer     string             `json:"finalAnswer,omitempty"`
	Sources         []agent.Source     `json:"sources,omitempty"`
	LLMAnalysis     map[string]any     `json:"llmAnalysis,omitempty"`
	AgentResults    []agent.StepResult `json:"agentResults,omitempty"`
	ErrorCode       string             `json:"errorCode,omitempty"`
	ErrorMessage    string             `json:"errorMessage,omitempty"`
	StartedAt       time.Time          `json:"startedAt"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
	ExecutionTimeMs int64              `json:"executionTimeMs"`
}

func toStartResponse(run Run) StartRunResponse {
	return StartRunResponse{
		RunID:     run.ID,
		Status:    run.Status,
		Query:     run.Query,
		StartedAt: run.StartedAt,
	}
}

func toResponse(run Run, now time.Time) RunResponse {
	return RunResponse{
		RunID:           run.ID,
		Query:           run.Query,
		Status:          run.Status,
		Steps:           run.Steps,
		CurrentStep:     run.CurrentStep,
		TotalSteps:      run.TotalSteps,
		Results:         run.Results,
		FinalAnswer:     run.FinalAnswer,
		Sources:         run.RetrievalResults,
		LLMAnalysis:     run.LLMAnalysis,
		AgentResults:    run.ExternalActions,
		ErrorCode:       run.ErrorCode,
		ErrorMessage:    run.ErrorMessage,
		StartedAt:       run.StartedAt,
		CompletedAt:     run.CompletedAt,
		ExecutionTimeMs: run.ExecutionTime(now).Milliseconds(),
	}
}
