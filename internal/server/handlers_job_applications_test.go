package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/types"
)

func createApplication(t *testing.T, s *Server, userID, title string) types.JobApplicationResponse {
	t.Helper()
	w := do(t, s, call{method: http.MethodPost, path: "/users/" + userID + "/job-applications", body: map[string]any{
		"title":       title,
		"companyName": "Analytical Engines Ltd",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[types.JobApplicationResponse](t, w)
}

func TestCreateJobApplication(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")

	app := createApplication(t, s, user.ID.String(), "Engineer")
	assert.Equal(t, user.ID, app.UserID)
	assert.Equal(t, enums.JobApplicationStatusPending, app.ApplicationStatus)
	assert.Equal(t, enums.AssistantStatusNotStarted, app.AssistantStatus)
	assert.Equal(t, enums.AssistantStepPending, app.AssistantCurrentStep)
	assert.Equal(t, 0, app.LockVersion)

	w := do(t, s, call{method: http.MethodPost, path: "/users/" + user.ID.String() + "/job-applications", body: map[string]any{
		"priority": "urgent",
	}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "priority", decodeBody[ErrorBody](t, w).Fields[0].Field)

	w = do(t, s, call{method: http.MethodPost, path: "/users/00000000-0000-0000-0000-000000000001/job-applications", body: map[string]any{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobApplications_Filters(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")
	first := createApplication(t, s, user.ID.String(), "Engineer")
	createApplication(t, s, user.ID.String(), "Architect")

	w := do(t, s, call{method: http.MethodPatch, path: "/job-applications/" + first.ID.String(), body: map[string]any{
		"applicationStatus": "applied",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	base := "/users/" + user.ID.String() + "/job-applications"
	w = do(t, s, call{method: http.MethodGet, path: base})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]types.JobApplicationResponse](t, w), 2)

	for _, q := range []string{"?applicationStatus=applied", "?application_status=applied"} {
		w = do(t, s, call{method: http.MethodGet, path: base + q})
		require.Equal(t, http.StatusOK, w.Code)
		apps := decodeBody[[]types.JobApplicationResponse](t, w)
		require.Len(t, apps, 1, q)
		assert.Equal(t, first.ID, apps[0].ID)
	}

	w = do(t, s, call{method: http.MethodGet, path: base + "?applicationStatus=ghosted"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "applicationStatus", decodeBody[ErrorBody](t, w).Fields[0].Field)
}

func TestUpdateJobApplication_LockVersion(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")
	app := createApplication(t, s, user.ID.String(), "Engineer")
	path := "/job-applications/" + app.ID.String()

	w := do(t, s, call{method: http.MethodPatch, path: path, body: map[string]any{
		"title":             "Staff Engineer",
		"companyName":       "Difference Engines plc",
		"location":          "London",
		"postingUrl":        "https://jobs.example.com/42",
		"notes":             "Referred by Charles.",
		"appliedAt":         "2026-03-01T09:30:00Z",
		"type":              "contract",
		"applicationStatus": "applied",
		"assistantStatus":   "in_progress",
		"source":            "referral",
		"priority":          "high",
		"lockVersion":       0,
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[types.JobApplicationResponse](t, w)
	assert.Equal(t, 1, updated.LockVersion)

	w = do(t, s, call{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.JobApplicationResponse](t, w)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Staff Engineer", *got.Title)
	require.NotNil(t, got.CompanyName)
	assert.Equal(t, "Difference Engines plc", *got.CompanyName)
	require.NotNil(t, got.Location)
	assert.Equal(t, "London", *got.Location)
	require.NotNil(t, got.PostingURL)
	assert.Equal(t, "https://jobs.example.com/42", *got.PostingURL)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "Referred by Charles.", *got.Notes)
	assert.True(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC).Equal(got.AppliedAt))
	assert.Equal(t, enums.JobTypeContract, got.Type)
	assert.Equal(t, enums.JobApplicationStatusApplied, got.ApplicationStatus)
	assert.Equal(t, enums.AssistantStatusInProgress, got.AssistantStatus)
	require.NotNil(t, got.Source)
	assert.Equal(t, enums.JobApplicationSourceReferral, *got.Source)
	assert.Equal(t, enums.JobApplicationPriorityHigh, got.Priority)
	assert.Equal(t, 1, got.LockVersion)

	w = do(t, s, call{method: http.MethodPatch, path: path, body: map[string]any{"priority": "low", "lockVersion": 0}})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody[ErrorBody](t, w)
	assert.Equal(t, "business_rule_violation", body.Error)
	assert.Equal(t, "concurrent_step_advancement", body.Rule)

	// A patch with nothing to change leaves the version alone.
	w = do(t, s, call{method: http.MethodPatch, path: path, body: map[string]any{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decodeBody[types.JobApplicationResponse](t, w).LockVersion)
}

func TestUpdateJobApplication_RejectsStepPointer(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")
	app := createApplication(t, s, user.ID.String(), "Engineer")
	path := "/job-applications/" + app.ID.String()

	w := do(t, s, call{method: http.MethodPatch, path: path, body: map[string]any{
		"assistantCurrentStep": "final_checklist",
		"notes":                "skip ahead",
	}})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body := decodeBody[ErrorBody](t, w)
	assert.Equal(t, "business_rule_violation", body.Error)
	assert.Equal(t, "step_order", body.Rule)

	w = do(t, s, call{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.JobApplicationResponse](t, w)
	assert.Equal(t, enums.AssistantStepPending, got.AssistantCurrentStep)
	assert.Nil(t, got.Notes)
	assert.Equal(t, 0, got.LockVersion)
}

func TestGetJobApplication_Detail(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")
	app := createApplication(t, s, user.ID.String(), "Engineer")
	doc := createDocument(t, s, user.ID.String(), map[string]any{"title": "CV", "type": "resume"})
	path := "/job-applications/" + app.ID.String()

	w := do(t, s, call{method: http.MethodPut, path: "/documents/" + doc.ID.String() + path})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, call{method: http.MethodPost, path: path + "/advance"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, call{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody[types.JobApplicationDetail](t, w)
	assert.Equal(t, app.ID, detail.ID)
	assert.Equal(t, enums.AssistantStepInitialSynthesis, detail.AssistantCurrentStep)
	require.Len(t, detail.Steps, 1)
	require.Len(t, detail.Documents, 1)
	assert.Equal(t, doc.ID, detail.Documents[0].ID)

	w = do(t, s, call{method: http.MethodGet, path: "/job-applications/00000000-0000-0000-0000-000000000001"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAndRestoreJobApplication(t *testing.T) {
	s, _ := testServer(t)
	user := createUser(t, s, "ada")
	app := createApplication(t, s, user.ID.String(), "Engineer")
	path := "/job-applications/" + app.ID.String()

	w := do(t, s, call{method: http.MethodDelete, path: path})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, call{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusNotFound, w.Code)

	// A job application cannot come back while its owner is deleted.
	w = do(t, s, call{method: http.MethodDelete, path: "/users/" + user.ID.String()})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, call{method: http.MethodPost, path: path + "/restore"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, call{method: http.MethodPost, path: "/users/" + user.ID.String() + "/restore"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, call{method: http.MethodPost, path: path + "/restore"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, call{method: http.MethodDelete, path: path + "?hard=true"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, call{method: http.MethodPost, path: path + "/restore"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
