package runs

import (
	"time"

	"docintel-backend/internal/agent"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	StepPending   = "pending"
	StepRunning   = "running"
	StepCompleted = "completed"
)

// Fixed step plan for every run, executed strictly in order.
const (
	StepDocumentRetrieval = "document_retrieval"
	StepVectorSearch      = "vector_search"
	StepAgentAnalysis     = "agent_analysis"
	StepResultSynthesis   = "result_synthesis"
)

var stepPlan = []string{
	StepDocumentRetrieval,
	StepVectorSearch,
	StepAgentAnalysis,
	StepResultSynthesis,
}

// Step is one named stage of a run's pipeline.
type Step struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Options captures the optional inputs fixed at run start.
type Options struct {
	DatasetID     string
	DocumentID    string
	DocumentTypes []string
	IndustryTypes []string
}

// Run is one tracked execution of a multi-step analysis request. After
// creation exactly one background task mutates it (through the store);
// everything else reads snapshots. Status is monotonic and terminal states
// never revert.
type Run struct {
	ID            string
	UserID        string
	Query         string
	DatasetID     string
	DocumentID    string
	DocumentTypes []string
	IndustryTypes []string

	Status      string
	Steps       []Step
	CurrentStep int
	TotalSteps  int

	Results          map[string]any
	FinalAnswer      string
	RetrievalResults []agent.Source
	LLMAnalysis      map[string]any
	ExternalActions  []agent.StepResult

	ErrorCode    string
	ErrorMessage string

	StartedAt   time.Time
	CompletedAt *time.Time
}

// ExecutionTime reports elapsed wall time: now minus start while running,
// or the frozen duration once terminal.
func (r Run) ExecutionTime(now time.Time) time.Duration {
	if r.CompletedAt != nil {
		return r.CompletedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Terminal reports whether the run reached a final status.
func (r Run) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

func newPendingSteps() []Step {
	steps := make([]Step, len(stepPlan))
	for i, name := range stepPlan {
		steps[i] = Step{Name: name, Status: StepPending}
	}
	return steps
}

// cloneRun deep-copies the mutable fields so store readers always get an
// atomic snapshot, never a view into a record the executor may touch.
func cloneRun(r Run) Run {
	out := r
	out.Steps = append([]Step(nil), r.Steps...)
	out.DocumentTypes = append([]string(nil), r.DocumentTypes...)
	out.IndustryTypes = append([]string(nil), r.IndustryTypes...)
	out.RetrievalResults = append([]agent.Source(nil), r.RetrievalResults...)
	out.ExternalActions = append([]agent.StepResult(nil), r.ExternalActions...)
	if r.Results != nil {
		out.Results = make(map[string]any, len(r.Results))
		for k, v := range r.Results {
			out.Results[k] = v
		}
	}
	if r.LLMAnalysis != nil {
		out.LLMAnalysis = make(map[string]any, len(r.LLMAnalysis))
		for k, v := range r.LLMAnalysis {
			out.LLMAnalysis[k] = v
		}
	}
	return out
}
