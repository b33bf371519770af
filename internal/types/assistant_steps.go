package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
)

// AssistantStepCreate is the body of POST /job-applications/{id}/steps. When PreviousStepID
// is omitted the step is linked after the current head of the chain.
type AssistantStepCreate struct {
	StepName       enums.AssistantStepType    `json:"stepName" validate:"required,enum"`
	StepStatus     *enums.AssistantStepStatus `json:"stepStatus,omitempty" validate:"omitempty,enum"`
	StepOrder      *int                       `json:"stepOrder,omitempty" validate:"omitempty,min=1"`
	PreviousStepID *uuid.UUID                 `json:"previousStepId,omitempty"`
	InputContext   json.RawMessage            `json:"inputContext,omitempty"`
}

func (r *AssistantStepCreate) Validate() error { return Validate(r) }

func (r *AssistantStepCreate) Input(jobApplicationID uuid.UUID) db.CreateAssistantStepInput {
	in := db.CreateAssistantStepInput{
		JobApplicationID: jobApplicationID,
		StepName:         r.StepName,
		StepOrder:        r.StepOrder,
		PreviousStepID:   r.PreviousStepID,
		InputContext:     r.InputContext,
	}
	if r.StepStatus != nil {
		in.StepStatus = *r.StepStatus
	}
	return in
}

// AssistantStepUpdate is the body of PATCH /assistant-steps/{id}.
type AssistantStepUpdate struct {
	StepStatus   *enums.AssistantStepStatus `json:"stepStatus,omitempty" validate:"omitempty,enum"`
	StepOrder    *int                       `json:"stepOrder,omitempty" validate:"omitempty,min=1"`
	InputContext json.RawMessage            `json:"inputContext,omitempty"`
	Result       json.RawMessage            `json:"result,omitempty"`
}

func (r *AssistantStepUpdate) Validate() error { return Validate(r) }

func (r *AssistantStepUpdate) Input() db.UpdateAssistantStepInput {
	return db.UpdateAssistantStepInput{
		StepStatus:   r.StepStatus,
		StepOrder:    r.StepOrder,
		InputContext: r.InputContext,
		Result:       r.Result,
	}
}

// AdvanceRequest is the body of POST /job-applications/{id}/advance. Every field is
// optional; an empty object advances to the next stage.
type AdvanceRequest struct {
	Target       *enums.AssistantStepType `json:"target,omitempty" validate:"omitempty,enum"`
	LockVersion  *int                     `json:"lockVersion,omitempty" validate:"omitempty,min=0"`
	InputContext json.RawMessage          `json:"inputContext,omitempty"`
}

func (r *AdvanceRequest) Validate() error { return Validate(r) }

func (r *AdvanceRequest) Input(jobApplicationID uuid.UUID) db.AdvanceInput {
	return db.AdvanceInput{
		JobApplicationID:    jobApplicationID,
		Target:              r.Target,
		ExpectedLockVersion: r.LockVersion,
		InputContext:        r.InputContext,
	}
}

// AssistantStepResponse is a step as returned by the API.
type AssistantStepResponse struct {
	ID               uuid.UUID                 `json:"id"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
	JobApplicationID uuid.UUID                 `json:"jobApplicationId"`
	StepName         enums.AssistantStepType   `json:"stepName"`
	StepStatus       enums.AssistantStepStatus `json:"stepStatus"`
	StepOrder        *int                      `json:"stepOrder,omitempty"`
	PreviousStepID   *uuid.UUID                `json:"previousStepId,omitempty"`
	InputContext     json.RawMessage           `json:"inputContext,omitempty"`
	Result           json.RawMessage           `json:"result,omitempty"`
}

func AssistantStepToResponse(s *db.AssistantStep) AssistantStepResponse {
	return AssistantStepResponse{
		ID:               s.ID,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		JobApplicationID: s.JobApplicationID,
		StepName:         s.StepName,
		StepStatus:       s.StepStatus,
		StepOrder:        s.StepOrder,
		PreviousStepID:   s.PreviousStepID,
		InputContext:     s.InputContext,
		Result:           s.Result,
	}
}

func AssistantStepsToResponse(steps []db.AssistantStep) []AssistantStepResponse {
	out := make([]AssistantStepResponse, len(steps))
	for i := range steps {
		out[i] = AssistantStepToResponse(&steps[i])
	}
	return out
}

// Create returns the request that recreates the step.
func (r AssistantStepResponse) Create() AssistantStepCreate {
	status := r.StepStatus
	return AssistantStepCreate{
		StepName:       r.StepName,
		StepStatus:     &status,
		StepOrder:      r.StepOrder,
		PreviousStepID: r.PreviousStepID,
		InputContext:   r.InputContext,
	}
}

// AdvanceResponse is the state after an advance.
type AdvanceResponse struct {
	JobApplication JobApplicationResponse `json:"jobApplication"`
	Step           AssistantStepResponse  `json:"step"`
	Completed      *AssistantStepResponse `json:"completed,omitempty"`
}

func AdvanceToResponse(res *db.AdvanceResult) AdvanceResponse {
	out := AdvanceResponse{
		JobApplication: JobApplicationToResponse(res.JobApplication),
		Step:           AssistantStepToResponse(res.Step),
	}
	if res.Completed != nil {
		completed := AssistantStepToResponse(res.Completed)
		out.Completed = &completed
	}
	return out
}
