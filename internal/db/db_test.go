package db

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

func TestListOptions_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		opts   ListOptions
		limit  int
		offset int
	}{
		{"defaults", ListOptions{}, defaultListLimit, 0},
		{"explicit", ListOptions{Limit: 10, Offset: 20}, 10, 20},
		{"capped", ListOptions{Limit: 10_000}, maxListLimit, 0},
		{"negative offset", ListOptions{Limit: 5, Offset: -3}, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.limit, tt.opts.limit())
			assert.Equal(t, tt.offset, tt.opts.offset())
		})
	}
}

func TestAssignments(t *testing.T) {
	var a assignments
	assert.True(t, a.empty())

	title := "Engineer"
	var skipped *string
	setIf(&a, "title", &title)
	setIf(&a, "notes", skipped)
	a.setJSON("result", nil)
	a.setJSON("input_context", json.RawMessage(`{"k":1}`))

	require.False(t, a.empty())
	where := a.next(uuid.Nil)

	assert.Equal(t, "title = $1, input_context = $2, updated_at = NOW()", a.clause())
	assert.Equal(t, "$3", where)
	assert.Len(t, a.args, 3)
	assert.Equal(t, "Engineer", a.args[0])
	assert.Equal(t, []byte(`{"k":1}`), a.args[1])
}

func TestPageClause(t *testing.T) {
	clause, args := pageClause([]interface{}{"a"}, ListOptions{Limit: 7, Offset: 14})
	assert.Equal(t, " LIMIT $2 OFFSET $3", clause)
	assert.Equal(t, []interface{}{"a", 7, 14}, args)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "d.id, d.title, d.tags", prefixed("d", "id, title,\n\ttags"))
}

func TestJSONHelpers(t *testing.T) {
	assert.Nil(t, jsonArg(nil))
	assert.Nil(t, jsonArg(json.RawMessage{}))
	assert.Equal(t, []byte(`[]`), jsonArg(json.RawMessage(`[]`)))

	assert.Nil(t, rawJSON(nil))
	assert.Equal(t, json.RawMessage(`{}`), rawJSON([]byte(`{}`)))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		assert func(t *testing.T, err error)
	}{
		{
			name: "unique username",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "user_username_key"},
			assert: func(t *testing.T, err error) {
				var dup *apperr.DuplicateResourceError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "Username", dup.Resource)
			},
		},
		{
			name: "unique unknown constraint",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "other"},
			assert: func(t *testing.T, err error) {
				var dup *apperr.DuplicateResourceError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "Document", dup.Resource)
			},
		},
		{
			name: "foreign key",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", ConstraintName: "job_application_user_id_fkey"}),
			assert: func(t *testing.T, err error) {
				var nf *apperr.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "User", nf.Resource)
			},
		},
		{
			name: "bad enum text",
			err:  &pgconn.PgError{Code: "22P02"},
			assert: func(t *testing.T, err error) {
				var v *apperr.ValidationError
				assert.ErrorAs(t, err, &v)
			},
		},
		{
			name: "anything else",
			err:  fmt.Errorf("connection reset"),
			assert: func(t *testing.T, err error) {
				var dbErr *apperr.DatabaseError
				require.ErrorAs(t, err, &dbErr)
				assert.Equal(t, "Database operation failed.", dbErr.Error())
				assert.Contains(t, dbErr.Cause.Error(), "connection reset")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assert(t, mapError("create document", "Document", tt.err))
		})
	}
	assert.NoError(t, mapError("noop", "Document", nil))
}

func TestFileFormat(t *testing.T) {
	pdf := enums.MimeTypePDF
	docx := enums.FileTypeDOCX
	md := enums.FileTypeMarkdown

	m, f, err := fileFormat(&pdf, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.FileTypePDF, *f)
	assert.Equal(t, pdf, *m)

	m, f, err = fileFormat(nil, &md)
	require.NoError(t, err)
	assert.Equal(t, enums.MimeTypeMarkdown, *m)
	assert.Equal(t, md, *f)

	m, f, err = fileFormat(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Nil(t, f)

	_, _, err = fileFormat(&pdf, &docx)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "fileType", v.Fields[0].Field)
}

func TestCreateInputDefaults(t *testing.T) {
	app := CreateJobApplicationInput{}
	app.applyDefaults()
	assert.Equal(t, enums.JobTypeFullTime, app.Type)
	assert.Equal(t, enums.JobApplicationStatusPending, app.ApplicationStatus)
	assert.Equal(t, enums.AssistantStatusNotStarted, app.AssistantStatus)
	assert.Equal(t, enums.AssistantStepPending, app.AssistantCurrentStep)
	assert.Equal(t, enums.JobApplicationPriorityNone, app.Priority)

	doc := CreateDocumentInput{Type: enums.DocumentTypeResume}
	doc.applyDefaults()
	assert.Equal(t, enums.DocumentTypeResume, doc.Type)
	assert.Equal(t, enums.DocumentStatusPending, doc.Status)
	assert.Equal(t, enums.DocumentVisibilityPrivate, doc.Visibility)
	assert.Equal(t, enums.DocumentSourceUserUpload, doc.Source)
	assert.NotNil(t, doc.Tags)
}

func stepRows(n int) []AssistantStep {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	steps := make([]AssistantStep, n)
	for i := range steps {
		order := i + 1
		steps[i].ID = uuid.New()
		steps[i].StepOrder = &order
		steps[i].StepName = enums.AssistantStepTypes()[i+1]
		steps[i].StepStatus = enums.AssistantStatusCompleted
		steps[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i > 0 {
			prev := steps[i-1].ID
			steps[i].PreviousStepID = &prev
		}
	}
	return steps
}

func TestValidateHistory(t *testing.T) {
	steps := stepRows(3)
	ordered, err := validateHistory([]AssistantStep{steps[2], steps[0], steps[1]})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	for i := range steps {
		assert.Equal(t, steps[i].ID, ordered[i].ID)
	}

	branched := stepRows(3)
	prev := branched[0].ID
	branched[2].PreviousStepID = &prev
	_, err = validateHistory(branched)
	var rule *apperr.BusinessRuleViolationError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, workflow.RuleInvalidStepHistory, rule.Rule)
}

func TestStaleVersion(t *testing.T) {
	err := staleVersion(3, 4)
	var rule *apperr.BusinessRuleViolationError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, workflow.RuleConcurrentAdvance, rule.Rule)
	assert.Contains(t, rule.Detail, "expected lock version 3")
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := UserSession{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
