package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/types"
)

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.DocumentCreate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.store.CreateDocument(r.Context(), req.Input(userID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.DocumentToResponse(doc))
}

// handleListDocuments lists a user's documents, optionally filtered by type and status.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var filters db.DocumentFilters
	if filters.ListOptions, err = listOptions(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filters.Type, err = enumQuery(r, "type", enums.ParseDocumentType); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filters.Status, err = enumQuery(r, "status", enums.ParseDocumentStatus); err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), userID, filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DocumentsToResponse(docs))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.getDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DocumentToResponse(doc))
}

// handleUpdateDocument applies a partial update. Structured content is checked against the
// document type it will have after the update.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.DocumentUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkStructuredContent(r.Context(), docID, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.store.UpdateDocument(r.Context(), docID, req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DocumentToResponse(doc))
}

// checkStructuredContent validates the content a document will hold after req is applied.
// A JSON null clears the content and is not validated.
func (s *Server) checkStructuredContent(ctx context.Context, docID uuid.UUID, req *types.DocumentUpdate) error {
	newContent := len(req.StructuredContent) > 0
	if !newContent && req.Type == nil {
		return nil
	}
	if newContent && isJSONNull(req.StructuredContent) {
		return nil
	}

	docType := req.Type
	content := req.StructuredContent
	if docType == nil || !newContent {
		current, err := s.getDocument(ctx, docID)
		if err != nil {
			return err
		}
		if docType == nil {
			docType = &current.Type
		}
		if !newContent {
			content = current.StructuredContent
		}
	}
	if len(content) == 0 || isJSONNull(content) {
		return nil
	}
	return types.ValidateStructuredContent(*docType, content)
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "id")
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
		summary, err := s.store.HardDeleteDocument(r.Context(), docID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, summary)
		return
	}

	if err := s.store.SoftDeleteDocument(r.Context(), docID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.store.RestoreDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DocumentToResponse(doc))
}

// handleListDocumentLinks lists the applications a document is attached to.
func (s *Server) handleListDocumentLinks(w http.ResponseWriter, r *http.Request) {
	docID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.getDocument(r.Context(), docID); err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.store.ListJobApplicationsForDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.JobApplicationsToResponse(apps))
}

// handleAttachDocument links a document to an application. Linking twice is a no-op.
func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	docID, appID, ok := s.linkIDs(w, r)
	if !ok {
		return
	}

	if err := s.store.AttachDocument(r.Context(), docID, appID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetachDocument(w http.ResponseWriter, r *http.Request) {
	docID, appID, ok := s.linkIDs(w, r)
	if !ok {
		return
	}

	if err := s.store.DetachDocument(r.Context(), docID, appID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) linkIDs(w http.ResponseWriter, r *http.Request) (docID, appID uuid.UUID, ok bool) {
	docID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	appID, err = pathUUID(r, "app_id")
	if err != nil {
		s.writeError(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	return docID, appID, true
}

// getDocument returns a live document or a NotFoundError.
func (s *Server) getDocument(ctx context.Context, id uuid.UUID) (*db.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("Document", id)
	}
	return doc, nil
}
