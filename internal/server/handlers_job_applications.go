package server

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/types"
)

func (s *Server) handleCreateJobApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.JobApplicationCreate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.CreateJobApplication(r.Context(), req.Input(userID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.JobApplicationToResponse(app))
}

// handleListJobApplications lists a user's applications, optionally filtered by
// applicationStatus, assistantStatus and priority.
func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var filters db.JobApplicationFilters
	if filters.ListOptions, err = listOptions(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filters.ApplicationStatus, err = enumQuery(r, "applicationStatus", enums.ParseJobApplicationStatus); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filters.AssistantStatus, err = enumQuery(r, "assistantStatus", enums.ParseAssistantStepStatus); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filters.Priority, err = enumQuery(r, "priority", enums.ParseJobApplicationPriority); err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.store.ListJobApplications(r.Context(), userID, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.JobApplicationsToResponse(apps))
}

// handleGetJobApplication returns the application with its step history and linked
// documents. The two are loaded concurrently.
func (s *Server) handleGetJobApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		history *db.AssistantHistory
		docs    []db.Document
	)
	g, gCtx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		history, err = s.store.GetAssistantHistory(gCtx, appID)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = s.store.ListDocumentsForJobApplication(gCtx, appID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.JobApplicationDetail{
		JobApplicationResponse: types.JobApplicationToResponse(history.JobApplication),
		Steps:                  types.AssistantStepsToResponse(history.Steps),
		Documents:              types.DocumentsToResponse(docs),
	})
}

func (s *Server) handleUpdateJobApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.JobApplicationUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.UpdateJobApplication(r.Context(), appID, req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.JobApplicationToResponse(app))
}

func (s *Server) handleDeleteJobApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hard, err := hardDelete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if hard {
		summary, err := s.store.HardDeleteJobApplication(r.Context(), appID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, summary)
		return
	}

	if err := s.store.SoftDeleteJobApplication(r.Context(), appID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreJobApplication(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.RestoreJobApplication(r.Context(), appID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.JobApplicationToResponse(app))
}

func (s *Server) handleListApplicationDocuments(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.GetJobApplication(r.Context(), appID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if app == nil {
		s.writeError(w, r, apperr.NotFound("Job application", appID))
		return
	}

	docs, err := s.store.ListDocumentsForJobApplication(r.Context(), appID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DocumentsToResponse(docs))
}
