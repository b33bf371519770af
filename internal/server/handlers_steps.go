package server

import (
	"net/http"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/types"
)

// handleListSteps returns the step chain of an application from its first step to its head.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	history, err := s.store.GetAssistantHistory(r.Context(), appID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AssistantStepsToResponse(history.Steps))
}

func (s *Server) handleCreateStep(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.AssistantStepCreate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	step, err := s.store.CreateAssistantStep(r.Context(), req.Input(appID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.AssistantStepToResponse(step))
}

// handleAdvance moves an application to its next workflow stage. The body is optional.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.AdvanceRequest
	if err := decodeOptional(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.store.AdvanceAssistantStep(r.Context(), req.Input(appID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("assistant advanced",
		"job_application_id", appID,
		"step", result.Step.StepName,
		"lock_version", result.JobApplication.LockVersion,
	)
	s.jsonResponse(w, http.StatusOK, types.AdvanceToResponse(result))
}

func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	stepID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	step, err := s.store.GetAssistantStep(r.Context(), stepID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if step == nil {
		s.writeError(w, r, apperr.NotFound("Assistant step", stepID))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AssistantStepToResponse(step))
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	stepID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.AssistantStepUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	step, err := s.store.UpdateAssistantStep(r.Context(), stepID, req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AssistantStepToResponse(step))
}
