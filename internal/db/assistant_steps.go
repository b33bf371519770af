package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

const assistantStepColumns = `id, created_at, updated_at, is_deleted, deleted_at, job_application_id,
	step_name, step_status, step_order, previous_step_id, input_context, result`

func scanAssistantStep(row pgx.Row) (*AssistantStep, error) {
	var s AssistantStep
	var inputJSON, resultJSON []byte
	err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.IsDeleted, &s.DeletedAt,
		&s.JobApplicationID, &s.StepName, &s.StepStatus, &s.StepOrder, &s.PreviousStepID,
		&inputJSON, &resultJSON)
	if err != nil {
		return nil, err
	}
	s.InputContext = rawJSON(inputJSON)
	s.Result = rawJSON(resultJSON)
	return &s, nil
}

func listSteps(ctx context.Context, q querier, jobApplicationID uuid.UUID) ([]AssistantStep, error) {
	query := `SELECT ` + assistantStepColumns + ` FROM assistant_step
	          WHERE job_application_id = $1 AND NOT is_deleted
	          ORDER BY step_order NULLS LAST, created_at, id`
	rows, err := q.Query(ctx, query, jobApplicationID)
	if err != nil {
		return nil, mapError("list assistant steps", "Assistant step", err)
	}
	defer rows.Close()

	steps := []AssistantStep{}
	for rows.Next() {
		s, err := scanAssistantStep(rows)
		if err != nil {
			return nil, mapError("scan assistant step", "Assistant step", err)
		}
		steps = append(steps, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list assistant steps", "Assistant step", err)
	}
	return steps, nil
}

// validateHistory checks the chain rules and returns steps in chain order.
func validateHistory(steps []AssistantStep) ([]AssistantStep, error) {
	byID := make(map[uuid.UUID]AssistantStep, len(steps))
	chainSteps := make([]workflow.Step, len(steps))
	for i := range steps {
		byID[steps[i].ID] = steps[i]
		chainSteps[i] = steps[i].ChainStep()
	}

	chain, err := workflow.Validate(chainSteps)
	if err != nil {
		var chainErr *workflow.ChainError
		if errors.As(err, &chainErr) {
			return nil, &apperr.BusinessRuleViolationError{Rule: workflow.RuleInvalidStepHistory, Detail: chainErr.Error()}
		}
		return nil, err
	}

	ordered := make([]AssistantStep, len(chain))
	for i, c := range chain {
		ordered[i] = byID[c.ID]
	}
	return ordered, nil
}

func chainOf(steps []AssistantStep) []workflow.Step {
	out := make([]workflow.Step, len(steps))
	for i := range steps {
		out[i] = steps[i].ChainStep()
	}
	return out
}

// lockApplication takes a row lock on a live application for the rest of the transaction.
func lockApplication(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*JobApplication, error) {
	app, err := getJobApplication(ctx, tx, id, "FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.NotFound("Job application", id)
	}
	return app, nil
}

func insertStep(ctx context.Context, tx pgx.Tx, in CreateAssistantStepInput) (*AssistantStep, error) {
	query := `INSERT INTO assistant_step (job_application_id, step_name, step_status, step_order,
	              previous_step_id, input_context)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + assistantStepColumns
	s, err := scanAssistantStep(tx.QueryRow(ctx, query,
		in.JobApplicationID, in.StepName, in.StepStatus, in.StepOrder, in.PreviousStepID,
		jsonArg(in.InputContext),
	))
	if err != nil {
		return nil, mapError("create assistant step", "Assistant step", err)
	}
	return s, nil
}

// CreateAssistantStep records a step directly. Without an explicit predecessor the step is
// linked after the current head; the resulting history must still form one chain.
func (db *DB) CreateAssistantStep(ctx context.Context, in CreateAssistantStepInput) (*AssistantStep, error) {
	if in.StepStatus == "" {
		in.StepStatus = enums.AssistantStatusNotStarted
	}
	if !in.StepName.IsValid() {
		return nil, apperr.Invalid("stepName", fmt.Sprintf("unknown step %q", in.StepName))
	}

	var created *AssistantStep
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockApplication(ctx, tx, in.JobApplicationID); err != nil {
			return err
		}
		steps, err := listSteps(ctx, tx, in.JobApplicationID)
		if err != nil {
			return err
		}
		ordered, err := validateHistory(steps)
		if err != nil {
			return err
		}

		if head := workflow.Head(chainOf(ordered)); head != nil {
			if in.PreviousStepID == nil {
				id := head.ID
				in.PreviousStepID = &id
			}
			if in.StepOrder == nil && head.Order != nil {
				next := *head.Order + 1
				in.StepOrder = &next
			}
		}

		proposed := append(chainOf(ordered), workflow.Step{
			ID:         uuid.New(),
			PreviousID: in.PreviousStepID,
			Order:      in.StepOrder,
			Name:       in.StepName,
			Status:     in.StepStatus,
			CreatedAt:  latestCreatedAt(ordered).Add(time.Microsecond),
		})
		if _, err := workflow.Validate(proposed); err != nil {
			return &apperr.BusinessRuleViolationError{Rule: workflow.RuleInvalidStepHistory, Detail: err.Error()}
		}

		created, err = insertStep(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func latestCreatedAt(steps []AssistantStep) (latest time.Time) {
	for _, s := range steps {
		if s.CreatedAt.After(latest) {
			latest = s.CreatedAt
		}
	}
	return latest
}

// GetAssistantStep retrieves a step by ID. Returns nil, nil if not found.
func (db *DB) GetAssistantStep(ctx context.Context, id uuid.UUID) (*AssistantStep, error) {
	query := `SELECT ` + assistantStepColumns + ` FROM assistant_step WHERE id = $1 AND NOT is_deleted`
	s, err := scanAssistantStep(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get assistant step", "Assistant step", err)
	}
	return s, nil
}

// ListAssistantSteps returns an application's steps ordered by step order, then creation time.
func (db *DB) ListAssistantSteps(ctx context.Context, jobApplicationID uuid.UUID) ([]AssistantStep, error) {
	return listSteps(ctx, db.pool, jobApplicationID)
}

// UpdateAssistantStep changes a step's status, order or payloads. A new order must keep the
// history consistent with the chain.
func (db *DB) UpdateAssistantStep(ctx context.Context, id uuid.UUID, in UpdateAssistantStepInput) (*AssistantStep, error) {
	var updated *AssistantStep
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var appID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT job_application_id FROM assistant_step WHERE id = $1 AND NOT is_deleted`, id,
		).Scan(&appID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperr.NotFound("Assistant step", id)
			}
			return mapError("get assistant step", "Assistant step", err)
		}
		if _, err := lockApplication(ctx, tx, appID); err != nil {
			return err
		}

		if in.StepOrder != nil {
			steps, err := listSteps(ctx, tx, appID)
			if err != nil {
				return err
			}
			for i := range steps {
				if steps[i].ID == id {
					order := *in.StepOrder
					steps[i].StepOrder = &order
				}
			}
			if _, err := validateHistory(steps); err != nil {
				return err
			}
		}

		var a assignments
		setIf(&a, "step_status", in.StepStatus)
		setIf(&a, "step_order", in.StepOrder)
		a.setJSON("input_context", in.InputContext)
		a.setJSON("result", in.Result)
		if a.empty() {
			s, err := scanAssistantStep(tx.QueryRow(ctx,
				`SELECT `+assistantStepColumns+` FROM assistant_step WHERE id = $1`, id))
			if err != nil {
				return mapError("get assistant step", "Assistant step", err)
			}
			updated = s
			return nil
		}

		query := fmt.Sprintf(`UPDATE assistant_step SET %s WHERE id = %s RETURNING %s`,
			a.clause(), a.next(id), assistantStepColumns)
		s, err := scanAssistantStep(tx.QueryRow(ctx, query, a.args...))
		if err != nil {
			return mapError("update assistant step", "Assistant step", err)
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdvanceAssistantStep moves a job application to its next workflow stage in one
// transaction: the open head step is completed, a linked step row is appended and the
// application's assistant pair and lock version are bumped. A stale ExpectedLockVersion
// fails with concurrent_step_advancement and writes nothing.
func (db *DB) AdvanceAssistantStep(ctx context.Context, in AdvanceInput) (*AdvanceResult, error) {
	var result AdvanceResult
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		app, err := lockApplication(ctx, tx, in.JobApplicationID)
		if err != nil {
			return err
		}
		expected := app.LockVersion
		if in.ExpectedLockVersion != nil {
			if *in.ExpectedLockVersion != app.LockVersion {
				return staleVersion(*in.ExpectedLockVersion, app.LockVersion)
			}
			expected = *in.ExpectedLockVersion
		}

		steps, err := listSteps(ctx, tx, in.JobApplicationID)
		if err != nil {
			return err
		}
		ordered, err := validateHistory(steps)
		if err != nil {
			return err
		}

		plan, err := workflow.Plan(app.AssistantCurrentStep, app.AssistantStatus, in.Target, chainOf(ordered))
		if err != nil {
			return err
		}

		if plan.CompletePrevious {
			completed, err := scanAssistantStep(tx.QueryRow(ctx,
				`UPDATE assistant_step SET step_status = $1, updated_at = NOW()
				 WHERE id = $2 RETURNING `+assistantStepColumns,
				enums.AssistantStatusCompleted, *plan.PreviousID,
			))
			if err != nil {
				return mapError("complete assistant step", "Assistant step", err)
			}
			result.Completed = completed
		}

		result.Step, err = insertStep(ctx, tx, CreateAssistantStepInput{
			JobApplicationID: in.JobApplicationID,
			StepName:         plan.To,
			StepStatus:       enums.AssistantStatusInProgress,
			StepOrder:        plan.Order,
			PreviousStepID:   plan.PreviousID,
			InputContext:     in.InputContext,
		})
		if err != nil {
			return err
		}

		updated, err := scanJobApplication(tx.QueryRow(ctx,
			`UPDATE job_application
			 SET assistant_current_step = $1, assistant_status = $2,
			     lock_version = lock_version + 1, updated_at = NOW()
			 WHERE id = $3 AND lock_version = $4
			 RETURNING `+jobApplicationColumns,
			plan.To, plan.AppStatus, in.JobApplicationID, expected,
		))
		if err != nil {
			if err == pgx.ErrNoRows {
				return staleVersion(expected, app.LockVersion)
			}
			return mapError("advance job application", "Job application", err)
		}
		result.JobApplication = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAssistantHistory loads an application's steps and returns them as a validated chain.
func (db *DB) GetAssistantHistory(ctx context.Context, jobApplicationID uuid.UUID) (*AssistantHistory, error) {
	app, err := db.GetJobApplication(ctx, jobApplicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.NotFound("Job application", jobApplicationID)
	}

	steps, err := listSteps(ctx, db.pool, jobApplicationID)
	if err != nil {
		return nil, err
	}
	ordered, err := validateHistory(steps)
	if err != nil {
		return nil, err
	}
	return &AssistantHistory{JobApplication: app, Steps: ordered}, nil
}
