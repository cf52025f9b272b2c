package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docintel-backend/internal/agent"
	"docintel-backend/internal/documents"
	"docintel-backend/internal/extract"
	"docintel-backend/internal/queue"
	"docintel-backend/internal/shared/metrics"
	"docintel-backend/internal/shared/storage/object"
	"docintel-backend/internal/shared/telemetry"
)

const defaultStepTimeout = 120 * time.Second

// Orchestrator owns the lifecycle of asynchronous analysis runs. Each run
// is executed by exactly one background task; status and list calls read
// store snapshots and never block on execution. Progress is approximate by
// contract: a reader may observe current_step advanced before the step's
// completion timestamp lands.
type Orchestrator struct {
	Store Store
	Agent agent.Agent

	// DocRepo and Objects back the document_retrieval step; both optional.
	DocRepo documents.Repo
	Objects object.ObjectStore

	// Queue, when set, hands execution to an out-of-process worker instead
	// of an in-process goroutine.
	Queue queue.Client

	// StepTimeout bounds each step; a deadline overrun fails the run with
	// TIMEOUT_EXCEEDED rather than leaving it running forever.
	StepTimeout time.Duration
}

// Start validates the request, records the run with its full pending step
// plan, and triggers asynchronous execution. It returns as soon as the run
// is queryable and never waits on execution.
func (o *Orchestrator) Start(ctx context.Context, query, userID string, opts Options) (Run, error) {
	if strings.TrimSpace(query) == "" {
		return Run{}, ErrInvalidInput
	}
	if userID == "" {
		return Run{}, errors.New("user id is required")
	}

	run := Run{
		ID:            uuid.NewString(),
		UserID:        userID,
		Query:         query,
		DatasetID:     opts.DatasetID,
		DocumentID:    opts.DocumentID,
		DocumentTypes: opts.DocumentTypes,
		IndustryTypes: opts.IndustryTypes,
		Status:        StatusRunning,
		Steps:         newPendingSteps(),
		CurrentStep:   0,
		TotalSteps:    len(stepPlan),
		StartedAt:     time.Now().UTC(),
	}

	if err := o.Store.Create(ctx, run); err != nil {
		return Run{}, err
	}
	metrics.IncRunStarted()
	telemetry.Info("run.status", map[string]any{
		"run_id":  run.ID,
		"user_id": run.UserID,
		"status":  StatusRunning,
	})

	if o.Queue != nil {
		msg := queue.Message{
			RunID:      run.ID,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := o.Queue.Send(ctx, msg); err == nil {
			return run, nil
		} else {
			telemetry.Error("run.enqueue", map[string]any{
				"run_id": run.ID,
				"error":  err.Error(),
			})
			// fall through to in-process execution
		}
	}

	go o.Execute(context.Background(), run.ID)

	return run, nil
}

// Status returns a read-only snapshot of the run, enforcing ownership.
func (o *Orchestrator) Status(ctx context.Context, runID, callerUserID string) (Run, error) {
	run, err := o.Store.GetByID(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.UserID != callerUserID {
		return Run{}, ErrForbidden
	}
	return run, nil
}

// List returns the caller's runs, newest-started-first, truncated to limit.
func (o *Orchestrator) List(ctx context.Context, callerUserID string, limit int) ([]Run, error) {
	if callerUserID == "" {
		return nil, errors.New("user id is required")
	}
	return o.Store.ListByUser(ctx, callerUserID, limit)
}

// Execute drives the run's fixed step sequence to a terminal state. It is
// the single writer for the run; step and agent failures are recorded on
// the run itself and do not surface as errors. An error return means the
// run could not be loaded at all.
func (o *Orchestrator) Execute(ctx context.Context, runID string) error {
	defer func() {
		if r := recover(); r != nil {
			o.failRun(runID, "", fmt.Errorf("panic: %v", r))
		}
	}()

	run, err := o.Store.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("run lookup: %w", err)
	}
	if run.Terminal() {
		return nil
	}
	if o.Agent == nil {
		o.failRun(runID, StepAgentAnalysis, errors.New("missing analysis agent"))
		return nil
	}

	var output AgentOutput
	for i, stepName := range stepPlan {
		if err := o.Store.UpdateStep(ctx, runID, i, StepRunning, nil, i); err != nil {
			o.failRun(runID, stepName, fmt.Errorf("set step running: %w", err))
			return nil
		}

		if err := o.runStep(ctx, &run, stepName, &output); err != nil {
			o.failRun(runID, stepName, err)
			return nil
		}

		now := time.Now().UTC()
		if err := o.Store.UpdateStep(ctx, runID, i, StepCompleted, &now, i); err != nil {
			o.failRun(runID, stepName, fmt.Errorf("set step completed: %w", err))
			return nil
		}
	}

	results := map[string]any{
		"answer":     output.FinalAnswer,
		"sources":    len(output.RetrievalResults),
		"confidence": output.LLMAnalysis["confidence"],
	}
	completedAt := time.Now().UTC()
	if err := o.Store.UpdateCompleted(ctx, runID, results, completedAt); err != nil {
		o.failRun(runID, StepResultSynthesis, fmt.Errorf("set run completed: %w", err))
		return nil
	}

	metrics.IncRunCompleted()
	metrics.ObserveRunDurationMs(durationMs(run.StartedAt, completedAt))
	telemetry.Info("run.status", map[string]any{
		"run_id":            runID,
		"user_id":           run.UserID,
		"status":            StatusCompleted,
		"status_transition": "running->completed",
		"duration_ms":       durationMs(run.StartedAt, completedAt),
	})
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, run *Run, stepName string, output *AgentOutput) error {
	stepCtx, cancel := context.WithTimeout(ctx, o.stepTimeout())
	defer cancel()

	switch stepName {
	case StepDocumentRetrieval:
		return o.retrieveDocument(stepCtx, run)
	case StepVectorSearch:
		// Placeholder stage: vector search is owned by the agent service
		// today and runs inside agent_analysis.
		return stepCtx.Err()
	case StepAgentAnalysis:
		result, err := o.Agent.ProcessQuery(stepCtx, agent.ProcessInput{
			Query:         run.Query,
			UserID:        run.UserID,
			DocumentID:    run.DocumentID,
			DocumentTypes: run.DocumentTypes,
			IndustryTypes: run.IndustryTypes,
		})
		if err != nil {
			return fmt.Errorf("agent process query: %w", err)
		}
		*output = AgentOutput{
			FinalAnswer:      result.Response,
			RetrievalResults: result.Sources,
			LLMAnalysis: map[string]any{
				"response":   result.Response,
				"confidence": result.Confidence,
			},
			ExternalActions: result.AgentResults,
			TotalSteps:      len(result.AgentResults),
		}
		if err := o.Store.UpdateAgentOutput(stepCtx, run.ID, *output); err != nil {
			return fmt.Errorf("set agent output: %w", err)
		}
		return nil
	case StepResultSynthesis:
		return stepCtx.Err()
	default:
		return fmt.Errorf("unknown step %q", stepName)
	}
}

// retrieveDocument resolves the run's document and makes sure its text has
// been extracted. Runs without a document filter skip straight through.
func (o *Orchestrator) retrieveDocument(ctx context.Context, run *Run) error {
	if run.DocumentID == "" || o.DocRepo == nil {
		return ctx.Err()
	}

	doc, err := o.DocRepo.GetByID(ctx, run.UserID, run.DocumentID)
	if err != nil {
		return fmt.Errorf("document lookup id=%s: %w", run.DocumentID, err)
	}
	if doc.ExtractedTextKey != "" || o.Objects == nil {
		return nil
	}

	if _, err := extract.ExtractText(ctx, o.Objects, doc.StorageKey, doc.MimeType, doc.FileName); err != nil {
		return fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err)
	}
	extractedKey := doc.StorageKey + ".extracted.txt"
	if err := o.DocRepo.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, time.Now().UTC()); err != nil {
		return fmt.Errorf("document %s: update extraction: %w", doc.ID, err)
	}
	return nil
}

// failRun is the single terminal failure path: the run flips to failed with
// a classified error code and no further step transitions happen. A fresh
// context is used so a cancelled step context cannot block the write.
func (o *Orchestrator) failRun(runID, stepName string, err error) {
	code := classifyRunFailure(err, stepName)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := o.Store.UpdateFailed(context.Background(), runID, code, msg, completedAt); updateErr != nil && !errors.Is(updateErr, ErrNotFound) {
		telemetry.Error("run.fail_update", map[string]any{
			"run_id": runID,
			"error":  updateErr.Error(),
			"cause":  msg,
		})
	}
	metrics.IncRunFailed()
	telemetry.Info("run.status", map[string]any{
		"run_id":            runID,
		"status":            StatusFailed,
		"status_transition": "running->failed",
		"step":              stepName,
		"error_code":        code,
		"error":             msg,
	})
}

func (o *Orchestrator) stepTimeout() time.Duration {
	if o.StepTimeout > 0 {
		return o.StepTimeout
	}
	return defaultStepTimeout
}

func classifyRunFailure(err error, stepName string) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeoutExceeded
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") && strings.Contains(msg, "agent") {
		return ErrorCodeTimeoutExceeded
	}
	if stepName == StepAgentAnalysis && strings.Contains(msg, "agent") {
		return ErrorCodeAgentFailure
	}
	if strings.Contains(msg, "document") || strings.Contains(msg, "storage") || strings.Contains(msg, "set step") || strings.Contains(msg, "set agent output") || strings.Contains(msg, "set run completed") {
		return ErrorCodeStorage
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}
