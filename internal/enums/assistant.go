package enums

import (
	"database/sql/driver"
	"slices"
)

// AssistantStepType names a stage of the assistant workflow. The declaration order is the
// order in which the workflow visits the stages.
type AssistantStepType string

const (
	AssistantStepPending              AssistantStepType = "pending"
	AssistantStepInitialSynthesis     AssistantStepType = "initial_synthesis"
	AssistantStepMasterList           AssistantStepType = "master_list"
	AssistantStepCandidateValidation  AssistantStepType = "candidate_validation"
	AssistantStepTailoredResume       AssistantStepType = "tailored_resume"
	AssistantStepTailoredCoverLetter  AssistantStepType = "tailored_cover_letter"
	AssistantStepHiringManagerReview  AssistantStepType = "hiring_manager_review"
	AssistantStepLinkedInOptimization AssistantStepType = "linkedin_optimization"
	AssistantStepInterviewPreparation AssistantStepType = "interview_preparation"
	AssistantStepSkillDevelopmentPlan AssistantStepType = "skill_development_plan"
	AssistantStepFinalChecklist       AssistantStepType = "final_checklist"
)

var assistantStepTypes = []AssistantStepType{
	AssistantStepPending,
	AssistantStepInitialSynthesis,
	AssistantStepMasterList,
	AssistantStepCandidateValidation,
	AssistantStepTailoredResume,
	AssistantStepTailoredCoverLetter,
	AssistantStepHiringManagerReview,
	AssistantStepLinkedInOptimization,
	AssistantStepInterviewPreparation,
	AssistantStepSkillDevelopmentPlan,
	AssistantStepFinalChecklist,
}

// AssistantStepTypes returns every stage in workflow order.
func AssistantStepTypes() []AssistantStepType {
	return append([]AssistantStepType(nil), assistantStepTypes...)
}

// ParseAssistantStepType parses s as an AssistantStepType.
func ParseAssistantStepType(s string) (AssistantStepType, error) {
	return parse("assistant_step_type", assistantStepTypes, s)
}

func (t AssistantStepType) IsValid() bool {
	_, err := ParseAssistantStepType(string(t))
	return err == nil
}

// Position returns the zero-based index of the stage in workflow order, or -1.
func (t AssistantStepType) Position() int {
	return slices.Index(assistantStepTypes, t)
}

// Next returns the stage that follows t. ok is false for the last stage or an invalid value.
func (t AssistantStepType) Next() (next AssistantStepType, ok bool) {
	i := t.Position()
	if i < 0 || i == len(assistantStepTypes)-1 {
		return "", false
	}
	return assistantStepTypes[i+1], true
}

// IsFinal reports whether t is the last stage of the workflow.
func (t AssistantStepType) IsFinal() bool {
	return t == assistantStepTypes[len(assistantStepTypes)-1]
}

func (t *AssistantStepType) UnmarshalJSON(data []byte) error {
	return unmarshal("assistant_step_type", assistantStepTypes, data, t)
}

func (t *AssistantStepType) Scan(src any) error {
	return scan("assistant_step_type", assistantStepTypes, src, t)
}

func (t AssistantStepType) Value() (driver.Value, error) {
	return value("assistant_step_type", assistantStepTypes, t)
}

// AssistantStepStatus is the progress of one step execution, and also the coarse progress of
// the assistant for a whole job application.
type AssistantStepStatus string

const (
	AssistantStatusInProgress          AssistantStepStatus = "in_progress"
	AssistantStatusCompleted           AssistantStepStatus = "completed"
	AssistantStatusFailed              AssistantStepStatus = "failed"
	AssistantStatusCancelled           AssistantStepStatus = "cancelled"
	AssistantStatusNotStarted          AssistantStepStatus = "not_started"
	AssistantStatusWaitingForUserInput AssistantStepStatus = "waiting_for_user_input"
)

var assistantStepStatuses = []AssistantStepStatus{
	AssistantStatusInProgress,
	AssistantStatusCompleted,
	AssistantStatusFailed,
	AssistantStatusCancelled,
	AssistantStatusNotStarted,
	AssistantStatusWaitingForUserInput,
}

// AssistantStepStatuses returns every member of AssistantStepStatus.
func AssistantStepStatuses() []AssistantStepStatus {
	return append([]AssistantStepStatus(nil), assistantStepStatuses...)
}

// ParseAssistantStepStatus parses s as an AssistantStepStatus.
func ParseAssistantStepStatus(s string) (AssistantStepStatus, error) {
	return parse("assistant_step_status", assistantStepStatuses, s)
}

func (s AssistantStepStatus) IsValid() bool {
	_, err := ParseAssistantStepStatus(string(s))
	return err == nil
}

// IsTerminal reports whether no further work is expected for a step in this status.
func (s AssistantStepStatus) IsTerminal() bool {
	return s == AssistantStatusCompleted || s == AssistantStatusFailed || s == AssistantStatusCancelled
}

func (s *AssistantStepStatus) UnmarshalJSON(data []byte) error {
	return unmarshal("assistant_step_status", assistantStepStatuses, data, s)
}

func (s *AssistantStepStatus) Scan(src any) error {
	return scan("assistant_step_status", assistantStepStatuses, src, s)
}

func (s AssistantStepStatus) Value() (driver.Value, error) {
	return value("assistant_step_status", assistantStepStatuses, s)
}
