package runs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps runs in memory and is safe for concurrent use. Reads
// return deep copies so a status poll never observes a half-written step
// list between field writes.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Run
	byUser map[string][]string // userID -> run IDs in creation order
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Run),
		byUser: make(map[string][]string),
	}
}

// Create stores the run, making it immediately visible to status queries.
func (s *MemoryStore) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.byID[run.ID] = cloneRun(run)
	s.byUser[run.UserID] = append(s.byUser[run.UserID], run.ID)
	return nil
}

// GetByID returns a snapshot of the run.
func (s *MemoryStore) GetByID(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.byID[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return cloneRun(run), nil
}

// ListByUser returns the user's runs newest-started-first, truncated to limit.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := s.byUser[userID]
	out := make([]Run, 0, len(ids))
	for _, id := range ids {
		if run, ok := s.byID[id]; ok {
			out = append(out, cloneRun(run))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStep advances one step's sub-status and the current step index.
func (s *MemoryStore) UpdateStep(ctx context.Context, runID string, stepIndex int, stepStatus string, completedAt *time.Time, currentStep int) error {
	return s.update(ctx, runID, func(run *Run) error {
		if stepIndex < 0 || stepIndex >= len(run.Steps) {
			return fmt.Errorf("step index %d out of range", stepIndex)
		}
		run.Steps[stepIndex].Status = stepStatus
		if completedAt != nil {
			t := *completedAt
			run.Steps[stepIndex].CompletedAt = &t
		}
		if currentStep > run.CurrentStep {
			run.CurrentStep = currentStep
		}
		return nil
	})
}

// UpdateAgentOutput records the agent's answer fields.
func (s *MemoryStore) UpdateAgentOutput(ctx context.Context, runID string, output AgentOutput) error {
	return s.update(ctx, runID, func(run *Run) error {
		run.FinalAnswer = output.FinalAnswer
		run.RetrievalResults = output.RetrievalResults
		run.LLMAnalysis = output.LLMAnalysis
		run.ExternalActions = output.ExternalActions
		if output.TotalSteps > 0 {
			run.TotalSteps = output.TotalSteps
		}
		return nil
	})
}

// UpdateCompleted flips the run to completed exactly once.
func (s *MemoryStore) UpdateCompleted(ctx context.Context, runID string, results map[string]any, completedAt time.Time) error {
	return s.update(ctx, runID, func(run *Run) error {
		if run.Terminal() {
			return nil
		}
		run.Status = StatusCompleted
		run.Results = results
		t := completedAt
		run.CompletedAt = &t
		return nil
	})
}

// UpdateFailed flips the run to failed exactly once; a terminal run is
// never overwritten.
func (s *MemoryStore) UpdateFailed(ctx context.Context, runID string, errorCode, errorMessage string, completedAt time.Time) error {
	return s.update(ctx, runID, func(run *Run) error {
		if run.Terminal() {
			return nil
		}
		run.Status = StatusFailed
		run.ErrorCode = errorCode
		run.ErrorMessage = errorMessage
		t := completedAt
		run.CompletedAt = &t
		return nil
	})
}

func (s *MemoryStore) update(ctx context.Context, runID string, mutate func(*Run) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.byID[runID]
	if !ok {
		return ErrNotFound
	}
	if err := mutate(&run); err != nil {
		return err
	}
	s.byID[runID] = run
	return nil
}

var _ Store = (*MemoryStore)(nil)
