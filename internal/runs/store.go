package runs

import (
	"context"
	"time"

	"docintel-backend/internal/agent"
)

// AgentOutput carries the agent's answer into the run record. TotalSteps
// comes from the agent's own step count when it reports one.
type AgentOutput struct {
	FinalAnswer      string
	RetrievalResults []agent.Source
	LLMAnalysis      map[string]any
	ExternalActions  []agent.StepResult
	TotalSteps       int
}

// Store persists run state. The orchestrator is the only writer for a given
// run; Status/List callers read concurrently, so implementations must return
// snapshots rather than live references.
type Store interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Run, error)

	// UpdateStep sets one step's sub-status (and completion timestamp when
	// terminal) together with the run's current step index.
	UpdateStep(ctx context.Context, runID string, stepIndex int, stepStatus string, completedAt *time.Time, currentStep int) error

	// UpdateAgentOutput records the agent's answer; called once per run.
	UpdateAgentOutput(ctx context.Context, runID string, output AgentOutput) error

	// UpdateCompleted flips the run to its terminal completed state.
	UpdateCompleted(ctx context.Context, runID string, results map[string]any, completedAt time.Time) error

	// UpdateFailed flips the run to its terminal failed state.
	UpdateFailed(ctx context.Context, runID string, errorCode, errorMessage string, completedAt time.Time) error
}
