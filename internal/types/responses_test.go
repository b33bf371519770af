package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
)

func TestUserResponse_HidesPasswordAndRoundTrips(t *testing.T) {
	u := &db.User{
		Base:         db.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Username:     "ada_l",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    ptr("Ada"),
		IsActive:     true,
		Role:         enums.UserRoleAdmin,
	}

	resp := UserToResponse(u)
	assert.True(t, resp.IsAdmin)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
	assert.Contains(t, string(out), `"firstName":"Ada"`)

	update := resp.Update()
	require.NoError(t, update.Validate())
	in := update.Input(nil)
	assert.Equal(t, u.Username, *in.Username)
	assert.Equal(t, u.Role, *in.Role)
	assert.Nil(t, in.PasswordHash)
}

func TestJobApplicationResponse_RoundTrip(t *testing.T) {
	app := &db.JobApplication{
		Base:                 db.Base{ID: uuid.New()},
		UserID:               uuid.New(),
		Title:                ptr("Backend Engineer"),
		CompanyName:          ptr("Analytical Engines"),
		Type:                 enums.JobTypeFullTime,
		ApplicationStatus:    enums.JobApplicationStatusPending,
		AssistantStatus:      enums.AssistantStatusNotStarted,
		AssistantCurrentStep: enums.AssistantStepPending,
		Priority:             enums.JobApplicationPriorityMedium,
		LockVersion:          3,
	}

	resp := JobApplicationToResponse(app)
	assert.Equal(t, 3, resp.LockVersion)

	create := resp.Create()
	require.NoError(t, create.Validate())
	in := create.Input(app.UserID)
	assert.Equal(t, app.UserID, in.UserID)
	assert.Equal(t, app.Type, in.Type)
	assert.Equal(t, app.AssistantCurrentStep, in.AssistantCurrentStep)
}

func TestJobApplicationUpdate_LockVersion(t *testing.T) {
	in := (&JobApplicationUpdate{Notes: ptr("called back")}).Input()
	assert.Nil(t, in.ExpectedLockVersion)

	in = (&JobApplicationUpdate{LockVersion: ptr(2)}).Input()
	require.NotNil(t, in.ExpectedLockVersion)
	assert.Equal(t, 2, *in.ExpectedLockVersion)
}

func TestDocumentResponse_EmptyTags(t *testing.T) {
	doc := &db.Document{Base: db.Base{ID: uuid.New()}, Title: "CV", Type: enums.DocumentTypeResume}
	out, err := json.Marshal(DocumentToResponse(doc))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tags":[]`)

	create := DocumentToResponse(doc).Create()
	require.NotNil(t, create.Type)
	assert.Equal(t, enums.DocumentTypeResume, *create.Type)
}

func TestAdvanceToResponse(t *testing.T) {
	appID := uuid.New()
	res := &db.AdvanceResult{
		JobApplication: &db.JobApplication{Base: db.Base{ID: appID}, AssistantCurrentStep: enums.AssistantStepMasterList},
		Step:           &db.AssistantStep{Base: db.Base{ID: uuid.New()}, JobApplicationID: appID, StepName: enums.AssistantStepMasterList},
	}
	out := AdvanceToResponse(res)
	assert.Nil(t, out.Completed)
	assert.Equal(t, enums.AssistantStepMasterList, out.Step.StepName)

	res.Completed = &db.AssistantStep{Base: db.Base{ID: uuid.New()}, StepName: enums.AssistantStepInitialSynthesis}
	out = AdvanceToResponse(res)
	require.NotNil(t, out.Completed)
	assert.Equal(t, enums.AssistantStepInitialSynthesis, out.Completed.StepName)
}
