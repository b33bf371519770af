package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/schemas"
	"github.com/jonathan/job-assistant/internal/types"
)

// EnumResponse lists the members of one vocabulary.
type EnumResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Welcome to " + s.settings.AppName + "!",
		"version": s.settings.AppVersion,
	})
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleEnums(w http.ResponseWriter, r *http.Request) {
	catalog := enums.Catalog()
	out := make([]EnumResponse, len(catalog))
	for i, def := range catalog {
		out[i] = EnumResponse{Name: def.Name, Values: def.Values}
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleContentSchema serves the JSON Schema for structured content of one document type.
// ?shared=true returns the shared profile definitions instead.
func (s *Server) handleContentSchema(w http.ResponseWriter, r *http.Request) {
	docType, err := enums.ParseDocumentType(r.PathValue("type"))
	if err != nil {
		s.writeError(w, r, apperr.Invalid("type", err.Error()))
		return
	}

	var raw []byte
	if shared, _ := boolQuery(r, "shared"); shared {
		raw, err = schemas.SharedContentSchema()
	} else {
		raw, err = schemas.ContentSchema(docType)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		s.logger.Error("error writing schema response", "error", err)
	}
}

// pathUUID parses the named path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a UUID")
	}
	return id, nil
}

// decode reads and validates a JSON request body.
func decode(r *http.Request, dst any) error {
	return types.DecodeRequest(r.Body, dst)
}

// decodeOptional is decode for endpoints whose body may be omitted.
func decodeOptional(r *http.Request, dst any) error {
	if r.ContentLength == 0 {
		return types.Validate(dst)
	}
	return decode(r, dst)
}

// queryValue returns a query parameter under its camelCase name or its snake_case spelling.
func queryValue(r *http.Request, name string) (string, bool) {
	q := r.URL.Query()
	if q.Has(name) {
		return q.Get(name), true
	}
	snake := types.CamelToSnake(name)
	if snake != name && q.Has(snake) {
		return q.Get(snake), true
	}
	return "", false
}

func boolQuery(r *http.Request, name string) (bool, error) {
	v, ok := queryValue(r, name)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, apperr.Invalid(name, "must be true or false")
	}
	return b, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	v, ok := queryValue(r, name)
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Invalid(name, "must be a non-negative integer")
	}
	return n, nil
}

// listOptions reads limit, offset and includeDeleted.
func listOptions(r *http.Request) (db.ListOptions, error) {
	var opts db.ListOptions
	var err error
	if opts.Limit, err = intQuery(r, "limit"); err != nil {
		return opts, err
	}
	if opts.Offset, err = intQuery(r, "offset"); err != nil {
		return opts, err
	}
	if opts.IncludeDeleted, err = boolQuery(r, "includeDeleted"); err != nil {
		return opts, err
	}
	return opts, nil
}

// enumQuery parses an optional enum filter with parse. A missing parameter yields nil.
func enumQuery[T any](r *http.Request, name string, parse func(string) (T, error)) (*T, error) {
	v, ok := queryValue(r, name)
	if !ok || v == "" {
		return nil, nil
	}
	out, err := parse(v)
	if err != nil {
		return nil, apperr.Invalid(name, err.Error())
	}
	return &out, nil
}

// hardDelete reports whether a DELETE asked for ?hard=true.
func hardDelete(r *http.Request) (bool, error) {
	return boolQuery(r, "hard")
}
