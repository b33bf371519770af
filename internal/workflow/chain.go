// Package workflow models the assistant step history of a job application.
//
// Steps of one application form a singly-linked chain through PreviousID. A valid history
// has exactly one root, no branches and no cycles, and walking the chain from the root visits
// the steps in the same order as sorting them by step order then creation time.
package workflow

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/enums"
)

// Step is the part of an assistant step record the chain rules depend on.
type Step struct {
	ID         uuid.UUID
	PreviousID *uuid.UUID
	Order      *int
	Name       enums.AssistantStepType
	Status     enums.AssistantStepStatus
	CreatedAt  time.Time
}

// ChainError describes why a set of steps is not a single linear history.
type ChainError struct {
	StepID uuid.UUID
	Reason string
}

func (e *ChainError) Error() string {
	if e.StepID == uuid.Nil {
		return fmt.Sprintf("invalid step chain: %s", e.Reason)
	}
	return fmt.Sprintf("invalid step chain at %s: %s", e.StepID, e.Reason)
}

// Sort orders steps by step order, then creation time, then id. Steps without an order sort last.
func Sort(steps []Step) []Step {
	sorted := slices.Clone(steps)
	slices.SortStableFunc(sorted, func(a, b Step) int {
		switch {
		case a.Order != nil && b.Order == nil:
			return -1
		case a.Order == nil && b.Order != nil:
			return 1
		case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
			return cmp.Compare(*a.Order, *b.Order)
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return sorted
}

// Validate checks that steps form one linear history and returns them in chain order.
func Validate(steps []Step) ([]Step, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]Step, len(steps))
	for _, s := range steps {
		if _, dup := byID[s.ID]; dup {
			return nil, &ChainError{StepID: s.ID, Reason: "duplicate step id"}
		}
		byID[s.ID] = s
	}

	var root *Step
	successor := make(map[uuid.UUID]uuid.UUID, len(steps))
	for i := range steps {
		s := steps[i]
		if s.PreviousID == nil {
			if root != nil {
				return nil, &ChainError{StepID: s.ID, Reason: fmt.Sprintf("second root step (first is %s)", root.ID)}
			}
			root = &steps[i]
			continue
		}
		if *s.PreviousID == s.ID {
			return nil, &ChainError{StepID: s.ID, Reason: "step references itself"}
		}
		if _, ok := byID[*s.PreviousID]; !ok {
			return nil, &ChainError{StepID: s.ID, Reason: fmt.Sprintf("previous step %s does not belong to this history", *s.PreviousID)}
		}
		if other, taken := successor[*s.PreviousID]; taken {
			return nil, &ChainError{StepID: *s.PreviousID, Reason: fmt.Sprintf("step has two successors: %s and %s", other, s.ID)}
		}
		successor[*s.PreviousID] = s.ID
	}
	if root == nil {
		return nil, &ChainError{Reason: "no root step; the chain is a cycle"}
	}

	chain := make([]Step, 0, len(steps))
	for cur, ok := root.ID, true; ok; cur, ok = successor[cur] {
		chain = append(chain, byID[cur])
	}
	if len(chain) != len(steps) {
		return nil, &ChainError{Reason: fmt.Sprintf("%d steps are unreachable from the root; they form a cycle", len(steps)-len(chain))}
	}

	for i, s := range Sort(steps) {
		if s.ID != chain[i].ID {
			return nil, &ChainError{StepID: s.ID, Reason: fmt.Sprintf("step order places it at position %d but the chain has %s there", i, chain[i].ID)}
		}
	}
	return chain, nil
}

// Head returns the last step of a valid chain, or nil for an empty history.
func Head(chain []Step) *Step {
	if len(chain) == 0 {
		return nil
	}
	return &chain[len(chain)-1]
}
