package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGStore implements Store using Postgres. Steps and result payloads live
// in jsonb columns; scalar lifecycle fields get their own columns so list
// queries stay cheap.
type PGStore struct {
	DB *sql.DB
}

// Create inserts a new run.
func (s *PGStore) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO runs (
	id, user_id, query, dataset_id, document_id, document_types, industry_types,
	status, steps, current_step, total_steps, started_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	stepsPayload, err := json.Marshal(run.Steps)
	if err != nil {
		return err
	}
	docTypes, err := marshalJSONArray(run.DocumentTypes)
	if err != nil {
		return err
	}
	indTypes, err := marshalJSONArray(run.IndustryTypes)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, query,
		run.ID,
		run.UserID,
		run.Query,
		nullString(run.DatasetID),
		nullString(run.DocumentID),
		docTypes,
		indTypes,
		run.Status,
		stepsPayload,
		run.CurrentStep,
		run.TotalSteps,
		run.StartedAt,
	)
	return err
}

const runColumns = `
id, user_id, query, dataset_id, document_id, document_types, industry_types,
status, steps, current_step, total_steps, results, final_answer,
retrieval_results, llm_analysis, external_actions, error_code, error_message,
started_at, completed_at`

// GetByID returns a run by ID.
func (s *PGStore) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1 LIMIT 1`
	run, err := scanRun(s.DB.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByUser returns the user's runs newest-started-first.
func (s *PGStore) ListByUser(ctx context.Context, userID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM runs WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// UpdateStep sets one step's sub-status and the current step index.
func (s *PGStore) UpdateStep(ctx context.Context, runID string, stepIndex int, stepStatus string, completedAt *time.Time, currentStep int) error {
	run, err := s.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if stepIndex < 0 || stepIndex >= len(run.Steps) {
		return errors.New("step index out of range")
	}
	run.Steps[stepIndex].Status = stepStatus
	if completedAt != nil {
		t := *completedAt
		run.Steps[stepIndex].CompletedAt = &t
	}
	if currentStep < run.CurrentStep {
		currentStep = run.CurrentStep
	}

	stepsPayload, err := json.Marshal(run.Steps)
	if err != nil {
		return err
	}

	const query = `
UPDATE runs
SET steps = $1::jsonb,
    current_step = $2,
    updated_at = now()
WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, stepsPayload, currentStep, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAgentOutput records the agent's answer fields.
func (s *PGStore) UpdateAgentOutput(ctx context.Context, runID string, output AgentOutput) error {
	const query = `
UPDATE runs
SET final_answer = $1,
    retrieval_results = $2::jsonb,
    llm_analysis = $3::jsonb,
    external_actions = $4::jsonb,
    total_steps = CASE WHEN $5 > 0 THEN $5 ELSE total_steps END,
    updated_at = now()
WHERE id = $6`

	sources, err := marshalJSONB(output.RetrievalResults)
	if err != nil {
		return err
	}
	analysis, err := marshalJSONB(output.LLMAnalysis)
	if err != nil {
		return err
	}
	actions, err := marshalJSONB(output.ExternalActions)
	if err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, query, output.FinalAnswer, sources, analysis, actions, output.TotalSteps, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCompleted flips the run to completed; terminal runs are untouched.
func (s *PGStore) UpdateCompleted(ctx context.Context, runID string, results map[string]any, completedAt time.Time) error {
	const query = `
UPDATE runs
SET status = 'completed',
    results = $1::jsonb,
    completed_at = $2,
    updated_at = now()
WHERE id = $3 AND status = 'running'`

	payload, err := marshalJSONB(results)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, payload, completedAt, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.guardMiss(ctx, runID)
	}
	return nil
}

// UpdateFailed flips the run to failed; terminal runs are untouched.
func (s *PGStore) UpdateFailed(ctx context.Context, runID string, errorCode, errorMessage string, completedAt time.Time) error {
	const query = `
UPDATE runs
SET status = 'failed',
    error_code = $1,
    error_message = $2,
    completed_at = $3,
    updated_at = now()
WHERE id = $4 AND status = 'running'`

	res, err := s.DB.ExecContext(ctx, query, errorCode, errorMessage, completedAt, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.guardMiss(ctx, runID)
	}
	return nil
}

// guardMiss resolves a zero-row status-guarded update: a run that is already
// terminal is a no-op, a run that does not exist is ErrNotFound.
func (s *PGStore) guardMiss(ctx context.Context, runID string) error {
	var status string
	err := s.DB.QueryRowContext(ctx, `SELECT status FROM runs WHERE id = $1`, runID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var datasetID, documentID sql.NullString
	var docTypes, indTypes sql.NullString
	var steps sql.NullString
	var results, retrieval, llmAnalysis, actions sql.NullString
	var finalAnswer, errorCode, errorMessage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Query,
		&datasetID,
		&documentID,
		&docTypes,
		&indTypes,
		&r.Status,
		&steps,
		&r.CurrentStep,
		&r.TotalSteps,
		&results,
		&finalAnswer,
		&retrieval,
		&llmAnalysis,
		&actions,
		&errorCode,
		&errorMessage,
		&r.StartedAt,
		&completedAt,
	)
	if err != nil {
		return Run{}, err
	}

	r.DatasetID = datasetID.String
	r.DocumentID = documentID.String
	r.FinalAnswer = finalAnswer.String
	r.ErrorCode = errorCode.String
	r.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	if steps.Valid {
		if err := json.Unmarshal([]byte(steps.String), &r.Steps); err != nil {
			return Run{}, err
		}
	}
	if docTypes.Valid {
		_ = json.Unmarshal([]byte(docTypes.String), &r.DocumentTypes)
	}
	if indTypes.Valid {
		_ = json.Unmarshal([]byte(indTypes.String), &r.IndustryTypes)
	}
	if results.Valid {
		_ = json.Unmarshal([]byte(results.String), &r.Results)
	}
	if retrieval.Valid {
		_ = json.Unmarshal([]byte(retrieval.String), &r.RetrievalResults)
	}
	if llmAnalysis.Valid {
		_ = json.Unmarshal([]byte(llmAnalysis.String), &r.LLMAnalysis)
	}
	if actions.Valid {
		_ = json.Unmarshal([]byte(actions.String), &r.ExternalActions)
	}
	return r, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(value)
}

func marshalJSONArray(values []string) ([]byte, error) {
	if values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(values)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*PGStore)(nil)
