package operations

import "context"

// ProgressEvent reports one step transition of a run.
type ProgressEvent struct {
	RunID   string     `json:"run_id"`
	Step    string     `json:"step"`
	Name    string     `json:"name"`
	Status  StepStatus `json:"status"`
	Index   int        `json:"index"`
	Total   int        `json:"total"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Observer receives progress events synchronously from the run goroutine,
// so implementations must not block.
type Observer interface {
	OnProgress(ctx context.Context, event ProgressEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event ProgressEvent)

// OnProgress implements Observer.
func (f ObserverFunc) OnProgress(ctx context.Context, event ProgressEvent) {
	f(ctx, event)
}

// Event snapshots the step state.
func (s *StepState) Event(runID string, index, total int) ProgressEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProgressEvent{
		RunID:   runID,
		Step:    s.ID,
		Name:    s.Name,
		Status:  s.Status,
		Index:   index,
		Total:   total,
		Message: s.Message,
		Error:   s.Error,
	}
}
