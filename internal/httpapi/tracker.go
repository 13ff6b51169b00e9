package httpapi

import (
	"sync"

	"github.com/fyrsmithlabs/bomatch/internal/workflow"
)

// Workflow statuses reported by the tracker.
const (
	StatusInitializing = "initializing"
	StatusProcessing   = "processing"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

// WorkflowState is the tracked state of one workflow run.
type WorkflowState struct {
	WorkflowID   string           `json:"workflow_id"`
	Status       string           `json:"status"`
	CurrentStage string           `json:"current_stage"`
	Progress     float64          `json:"progress"`
	Message      string           `json:"message"`
	WIDocument   string           `json:"wi_document"`
	ItemMaster   string           `json:"item_master"`
	Error        string           `json:"error,omitempty"`
	Result       *workflow.Result `json:"result,omitempty"`
}

// tracker keeps the in-memory state of active and finished workflows.
type tracker struct {
	mu        sync.RWMutex
	workflows map[string]*WorkflowState
}

func newTracker() *tracker {
	return &tracker{workflows: make(map[string]*WorkflowState)}
}

func (t *tracker) create(workflowID, wiDocument, itemMaster string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workflows[workflowID] = &WorkflowState{
		WorkflowID:   workflowID,
		Status:       StatusInitializing,
		CurrentStage: "upload",
		Progress:     0,
		Message:      "Processing upload...",
		WIDocument:   wiDocument,
		ItemMaster:   itemMaster,
	}
}

func (t *tracker) updateProgress(workflowID, stage string, progress float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.workflows[workflowID]
	if !ok {
		return
	}
	state.CurrentStage = stage
	state.Progress = progress
	state.Message = message
	if progress < 100 {
		state.Status = StatusProcessing
	} else {
		state.Status = StatusCompleted
	}
}

func (t *tracker) complete(workflowID string, result *workflow.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.workflows[workflowID]
	if !ok {
		return
	}
	state.Status = StatusCompleted
	state.Progress = 100
	state.Message = "Processing completed successfully"
	state.Result = result
}

func (t *tracker) fail(workflowID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.workflows[workflowID]
	if !ok {
		return
	}
	state.Status = StatusError
	state.Progress = 0
	state.Message = "Processing failed: " + err.Error()
	state.Error = err.Error()
}

// get returns a copy so callers never observe concurrent mutation.
func (t *tracker) get(workflowID string) (WorkflowState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.workflows[workflowID]
	if !ok {
		return WorkflowState{}, false
	}
	return *state, true
}

// WorkflowSummary is one entry in the workflow listing.
type WorkflowSummary struct {
	WorkflowID string  `json:"workflow_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message"`
	WIDocument string  `json:"wi_document"`
	ItemMaster string  `json:"item_master"`
}

func (t *tracker) list() []WorkflowSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	summaries := make([]WorkflowSummary, 0, len(t.workflows))
	for _, state := range t.workflows {
		summaries = append(summaries, WorkflowSummary{
			WorkflowID: state.WorkflowID,
			Status:     state.Status,
			Progress:   state.Progress,
			Message:    state.Message,
			WIDocument: state.WIDocument,
			ItemMaster: state.ItemMaster,
		})
	}
	return summaries
}
