package db

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

// AssistantStep records one execution of a workflow stage for a job application.
type AssistantStep struct {
	Base
	JobApplicationID uuid.UUID                 `json:"jobApplicationId"`
	StepName         enums.AssistantStepType   `json:"stepName"`
	StepStatus       enums.AssistantStepStatus `json:"stepStatus"`
	StepOrder        *int                      `json:"stepOrder,omitempty"`
	PreviousStepID   *uuid.UUID                `json:"previousStepId,omitempty"`
	InputContext     json.RawMessage           `json:"inputContext,omitempty"`
	Result           json.RawMessage           `json:"result,omitempty"`
}

// ChainStep returns the fields the history chain rules operate on.
func (s *AssistantStep) ChainStep() workflow.Step {
	return workflow.Step{
		ID:         s.ID,
		PreviousID: s.PreviousStepID,
		Order:      s.StepOrder,
		Name:       s.StepName,
		Status:     s.StepStatus,
		CreatedAt:  s.CreatedAt,
	}
}

// CreateAssistantStepInput holds the fields for a new step. StepStatus defaults to not_started.
type CreateAssistantStepInput struct {
	JobApplicationID uuid.UUID
	StepName         enums.AssistantStepType
	StepStatus       enums.AssistantStepStatus
	StepOrder        *int
	PreviousStepID   *uuid.UUID
	InputContext     json.RawMessage
}

// UpdateAssistantStepInput holds optional changes to a step.
type UpdateAssistantStepInput struct {
	StepStatus   *enums.AssistantStepStatus
	StepOrder    *int
	InputContext json.RawMessage
	Result       json.RawMessage
}

// AdvanceInput requests moving a job application to its next workflow stage.
type AdvanceInput struct {
	JobApplicationID uuid.UUID
	// Target overrides the next stage; it must lie ahead of the current one.
	Target *enums.AssistantStepType
	// ExpectedLockVersion is the version the caller last read. Nil uses the current version.
	ExpectedLockVersion *int
	InputContext        json.RawMessage
}

// AdvanceResult is the state after a successful advance.
type AdvanceResult struct {
	JobApplication *JobApplication `json:"jobApplication"`
	Step           *AssistantStep  `json:"step"`
	Completed      *AssistantStep  `json:"completed,omitempty"`
}

// AssistantHistory is the validated step chain of one job application.
type AssistantHistory struct {
	JobApplication *JobApplication `json:"jobApplication"`
	Steps          []AssistantStep `json:"steps"`
}
