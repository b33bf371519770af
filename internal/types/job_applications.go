package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

// JobApplicationCreate is the body of POST /users/{id}/job-applications.
type JobApplicationCreate struct {
	Title                *string                       `json:"title,omitempty" validate:"omitempty,max=255"`
	CompanyName          *string                       `json:"companyName,omitempty" validate:"omitempty,max=255"`
	Location             *string                       `json:"location,omitempty" validate:"omitempty,max=255"`
	PostingURL           *string                       `json:"postingUrl,omitempty" validate:"omitempty,url,max=2048"`
	Notes                *string                       `json:"notes,omitempty" validate:"omitempty,max=1000"`
	AppliedAt            *time.Time                    `json:"appliedAt,omitempty"`
	Type                 *enums.JobType                `json:"type,omitempty" validate:"omitempty,enum"`
	ApplicationStatus    *enums.JobApplicationStatus   `json:"applicationStatus,omitempty" validate:"omitempty,enum"`
	AssistantStatus      *enums.AssistantStepStatus    `json:"assistantStatus,omitempty" validate:"omitempty,enum"`
	AssistantCurrentStep *enums.AssistantStepType      `json:"assistantCurrentStep,omitempty" validate:"omitempty,enum"`
	Source               *enums.JobApplicationSource   `json:"source,omitempty" validate:"omitempty,enum"`
	Priority             *enums.JobApplicationPriority `json:"priority,omitempty" validate:"omitempty,enum"`
}

func (r *JobApplicationCreate) Validate() error { return Validate(r) }

// Input converts the request into repository input for the given owner.
func (r *JobApplicationCreate) Input(userID uuid.UUID) db.CreateJobApplicationInput {
	in := db.CreateJobApplicationInput{
		UserID:      userID,
		Title:       r.Title,
		CompanyName: r.CompanyName,
		Location:    r.Location,
		PostingURL:  r.PostingURL,
		Notes:       r.Notes,
		AppliedAt:   r.AppliedAt,
		Source:      r.Source,
	}
	if r.Type != nil {
		in.Type = *r.Type
	}
	if r.ApplicationStatus != nil {
		in.ApplicationStatus = *r.ApplicationStatus
	}
	if r.AssistantStatus != nil {
		in.AssistantStatus = *r.AssistantStatus
	}
	if r.AssistantCurrentStep != nil {
		in.AssistantCurrentStep = *r.AssistantCurrentStep
	}
	if r.Priority != nil {
		in.Priority = *r.Priority
	}
	return in
}

// JobApplicationUpdate is the body of PATCH /job-applications/{id}. LockVersion, when sent,
// must match the stored version. AssistantCurrentStep is accepted only to be rejected: the
// step pointer moves through POST /job-applications/{id}/advance, which appends the step row.
type JobApplicationUpdate struct {
	Title                *string                       `json:"title,omitempty" validate:"omitempty,max=255"`
	CompanyName          *string                       `json:"companyName,omitempty" validate:"omitempty,max=255"`
	Location             *string                       `json:"location,omitempty" validate:"omitempty,max=255"`
	PostingURL           *string                       `json:"postingUrl,omitempty" validate:"omitempty,url,max=2048"`
	Notes                *string                       `json:"notes,omitempty" validate:"omitempty,max=1000"`
	AppliedAt            *time.Time                    `json:"appliedAt,omitempty"`
	Type                 *enums.JobType                `json:"type,omitempty" validate:"omitempty,enum"`
	ApplicationStatus    *enums.JobApplicationStatus   `json:"applicationStatus,omitempty" validate:"omitempty,enum"`
	AssistantStatus      *enums.AssistantStepStatus    `json:"assistantStatus,omitempty" validate:"omitempty,enum"`
	AssistantCurrentStep *enums.AssistantStepType      `json:"assistantCurrentStep,omitempty" validate:"omitempty,enum"`
	Source               *enums.JobApplicationSource   `json:"source,omitempty" validate:"omitempty,enum"`
	Priority             *enums.JobApplicationPriority `json:"priority,omitempty" validate:"omitempty,enum"`
	LockVersion          *int                          `json:"lockVersion,omitempty" validate:"omitempty,min=0"`
}

func (r *JobApplicationUpdate) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.AssistantCurrentStep != nil {
		return &apperr.BusinessRuleViolationError{
			Rule:   workflow.RuleStepOrder,
			Detail: "assistantCurrentStep changes only by advancing the assistant.",
		}
	}
	return nil
}

func (r *JobApplicationUpdate) Input() db.UpdateJobApplicationInput {
	return db.UpdateJobApplicationInput{
		Title:               r.Title,
		CompanyName:         r.CompanyName,
		Location:            r.Location,
		PostingURL:          r.PostingURL,
		Notes:               r.Notes,
		AppliedAt:           r.AppliedAt,
		Type:                r.Type,
		ApplicationStatus:   r.ApplicationStatus,
		AssistantStatus:     r.AssistantStatus,
		Source:              r.Source,
		Priority:            r.Priority,
		ExpectedLockVersion: r.LockVersion,
	}
}

// JobApplicationResponse is a job application as returned by the API.
type JobApplicationResponse struct {
	ID                   uuid.UUID                    `json:"id"`
	CreatedAt            time.Time                    `json:"createdAt"`
	UpdatedAt            time.Time                    `json:"updatedAt"`
	IsDeleted            bool                         `json:"isDeleted"`
	DeletedAt            *time.Time                   `json:"deletedAt,omitempty"`
	UserID               uuid.UUID                    `json:"userId"`
	Title                *string                      `json:"title,omitempty"`
	CompanyName          *string                      `json:"companyName,omitempty"`
	Location             *string                      `json:"location,omitempty"`
	PostingURL           *string                      `json:"postingUrl,omitempty"`
	Notes                *string                      `json:"notes,omitempty"`
	AppliedAt            time.Time                    `json:"appliedAt"`
	Type                 enums.JobType                `json:"type"`
	ApplicationStatus    enums.JobApplicationStatus   `json:"applicationStatus"`
	AssistantStatus      enums.AssistantStepStatus    `json:"assistantStatus"`
	AssistantCurrentStep enums.AssistantStepType      `json:"assistantCurrentStep"`
	Source               *enums.JobApplicationSource  `json:"source,omitempty"`
	Priority             enums.JobApplicationPriority `json:"priority"`
	LockVersion          int                          `json:"lockVersion"`
}

func JobApplicationToResponse(j *db.JobApplication) JobApplicationResponse {
	return JobApplicationResponse{
		ID:                   j.ID,
		CreatedAt:            j.CreatedAt,
		UpdatedAt:            j.UpdatedAt,
		IsDeleted:            j.IsDeleted,
		DeletedAt:            j.DeletedAt,
		UserID:               j.UserID,
		Title:                j.Title,
		CompanyName:          j.CompanyName,
		Location:             j.Location,
		PostingURL:           j.PostingURL,
		Notes:                j.Notes,
		AppliedAt:            j.AppliedAt,
		Type:                 j.Type,
		ApplicationStatus:    j.ApplicationStatus,
		AssistantStatus:      j.AssistantStatus,
		AssistantCurrentStep: j.AssistantCurrentStep,
		Source:               j.Source,
		Priority:             j.Priority,
		LockVersion:          j.LockVersion,
	}
}

func JobApplicationsToResponse(apps []db.JobApplication) []JobApplicationResponse {
	out := make([]JobApplicationResponse, len(apps))
	for i := range apps {
		out[i] = JobApplicationToResponse(&apps[i])
	}
	return out
}

// Create returns the request that recreates the application's client-settable fields.
func (r JobApplicationResponse) Create() JobApplicationCreate {
	appliedAt := r.AppliedAt
	typ := r.Type
	status := r.ApplicationStatus
	assistantStatus := r.AssistantStatus
	step := r.AssistantCurrentStep
	priority := r.Priority
	return JobApplicationCreate{
		Title:                r.Title,
		CompanyName:          r.CompanyName,
		Location:             r.Location,
		PostingURL:           r.PostingURL,
		Notes:                r.Notes,
		AppliedAt:            &appliedAt,
		Type:                 &typ,
		ApplicationStatus:    &status,
		AssistantStatus:      &assistantStatus,
		AssistantCurrentStep: &step,
		Source:               r.Source,
		Priority:             &priority,
	}
}

// JobApplicationDetail is GET /job-applications/{id}: the application with its step chain
// and linked documents.
type JobApplicationDetail struct {
	JobApplicationResponse
	Steps     []AssistantStepResponse `json:"steps"`
	Documents []DocumentResponse      `json:"documents"`
}
