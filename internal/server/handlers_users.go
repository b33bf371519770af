package server

import (
	"net/http"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/types"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req types.UserCreate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("user created", "user_id", user.ID)
	s.jsonResponse(w, http.StatusCreated, types.UserToResponse(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	users, err := s.store.ListUsers(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UsersToResponse(users))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, apperr.NotFound("User", userID))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UserToResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UserUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Update(r.Context(), userID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UserToResponse(user))
}

// handleDeleteUser soft-deletes a user, or with ?hard=true removes the user and everything
// it owns.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
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
		summary, err := s.store.HardDeleteUser(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.logger.Info("user purged", "user_id", userID, "job_applications", summary.JobApplications, "documents", summary.Documents)
		s.jsonResponse(w, http.StatusOK, summary)
		return
	}

	if err := s.store.SoftDeleteUser(r.Context(), userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.RestoreUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UserToResponse(user))
}
