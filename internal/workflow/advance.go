package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
)

// Rule names reported in BusinessRuleViolationError.
const (
	RuleWorkflowComplete   = "workflow_complete"
	RuleStepOrder          = "step_order"
	RuleConcurrentAdvance  = "concurrent_step_advancement"
	RuleWorkflowCancelled  = "workflow_cancelled"
	RuleInvalidStepHistory = "invalid_step_history"
)

// Transition is a planned step advancement for one job application.
type Transition struct {
	From enums.AssistantStepType
	To   enums.AssistantStepType
	// Order is nil when the head step has no order, so the new step still sorts after it.
	Order      *int
	PreviousID *uuid.UUID
	// CompletePrevious is set when the current head step is still open and must be closed
	// as completed in the same write.
	CompletePrevious bool
	// AppStatus is the assistant status the application takes after the advance.
	AppStatus enums.AssistantStepStatus
}

// Plan computes the advancement from current to target, or to the next stage when target
// is nil. history must already be a validated chain.
func Plan(current enums.AssistantStepType, status enums.AssistantStepStatus, target *enums.AssistantStepType, history []Step) (Transition, error) {
	if status == enums.AssistantStatusCancelled {
		return Transition{}, &apperr.BusinessRuleViolationError{Rule: RuleWorkflowCancelled, Detail: "assistant was cancelled for this application."}
	}

	var to enums.AssistantStepType
	if target == nil {
		next, ok := current.Next()
		if !ok {
			return Transition{}, &apperr.BusinessRuleViolationError{
				Rule:   RuleWorkflowComplete,
				Detail: fmt.Sprintf("%s is the last step.", current),
			}
		}
		to = next
	} else {
		if !target.IsValid() {
			return Transition{}, apperr.Invalid("stepName", fmt.Sprintf("unknown step %q", *target))
		}
		if target.Position() <= current.Position() {
			return Transition{}, &apperr.BusinessRuleViolationError{
				Rule:   RuleStepOrder,
				Detail: fmt.Sprintf("cannot move from %s back to %s.", current, *target),
			}
		}
		to = *target
	}

	first := 1
	t := Transition{From: current, To: to, Order: &first, AppStatus: enums.AssistantStatusInProgress}
	if head := Head(history); head != nil {
		id := head.ID
		t.PreviousID = &id
		t.CompletePrevious = !head.Status.IsTerminal()
		t.Order = nil
		if head.Order != nil {
			next := nextOrder(history)
			t.Order = &next
		}
	}
	return t, nil
}

// nextOrder is one past the highest recorded order, or one past the chain length when no
// step carries an order.
func nextOrder(history []Step) int {
	highest := 0
	for _, s := range history {
		if s.Order != nil && *s.Order > highest {
			highest = *s.Order
		}
	}
	if highest < len(history) {
		highest = len(history)
	}
	return highest + 1
}
