package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/enums"
)

// JobApplication is a tracked application for one position. ApplicationStatus and the
// assistant pair (AssistantStatus, AssistantCurrentStep) move independently.
type JobApplication struct {
	Base
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

// CreateJobApplicationInput holds the fields for a new job application. Zero enum values
// take the column defaults.
type CreateJobApplicationInput struct {
	UserID               uuid.UUID
	Title                *string
	CompanyName          *string
	Location             *string
	PostingURL           *string
	Notes                *string
	AppliedAt            *time.Time
	Type                 enums.JobType
	ApplicationStatus    enums.JobApplicationStatus
	AssistantStatus      enums.AssistantStepStatus
	AssistantCurrentStep enums.AssistantStepType
	Source               *enums.JobApplicationSource
	Priority             enums.JobApplicationPriority
}

// UpdateJobApplicationInput holds optional changes. assistant_current_step is not here: it
// moves only through AdvanceAssistantStep, together with the step row it points at.
type UpdateJobApplicationInput struct {
	Title             *string
	CompanyName       *string
	Location          *string
	PostingURL        *string
	Notes             *string
	AppliedAt         *time.Time
	Type              *enums.JobType
	ApplicationStatus *enums.JobApplicationStatus
	AssistantStatus   *enums.AssistantStepStatus
	Source            *enums.JobApplicationSource
	Priority          *enums.JobApplicationPriority
	// ExpectedLockVersion, when set, makes the update fail if another writer got there first.
	ExpectedLockVersion *int
}

// JobApplicationFilters narrows ListJobApplications.
type JobApplicationFilters struct {
	ListOptions
	ApplicationStatus *enums.JobApplicationStatus
	AssistantStatus   *enums.AssistantStepStatus
	Priority          *enums.JobApplicationPriority
}
