package operations

import (
	"energycli/pkg/contracts/domain"
)

// OperationState carries data between the steps of one run.
type OperationState struct {
	RunID  string
	Window int

	// RowsIngested counts rows the source delivered for the entity.
	RowsIngested int
	Records      []domain.YearRecord
	Summary      domain.Summary
	Persisted    bool
	Announced    bool

	Steps []*StepState
}

// NewOperationState creates the state for one run.
func NewOperationState(runID string, window int) *OperationState {
	return &OperationState{
		RunID:  runID,
		Window: window,
	}
}

func (s *OperationState) step(step Step) *StepState {
	st := NewStepState(step.ID(), step.Name())
	s.Steps = append(s.Steps, st)
	return st
}
