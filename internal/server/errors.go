package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/schemas"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Rule    string              `json:"rule,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// HTTPStatus returns the status code and error code for err.
func HTTPStatus(err error) (int, string) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		denied     *apperr.PermissionDeniedError
		duplicate  *apperr.DuplicateResourceError
		auth       *apperr.AuthenticationError
		rate       *apperr.RateLimitExceededError
		rule       *apperr.BusinessRuleViolationError
		external   *apperr.ExternalServiceError
		database   *apperr.DatabaseError
		config     *apperr.ConfigurationError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &denied):
		return http.StatusForbidden, "permission_denied"
	case errors.As(err, &duplicate):
		return http.StatusConflict, "duplicate_resource"
	case errors.As(err, &auth):
		return http.StatusUnauthorized, "authentication_failed"
	case errors.As(err, &rate):
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	case errors.As(err, &rule):
		return http.StatusConflict, "business_rule_violation"
	case errors.As(err, &external):
		return http.StatusBadGateway, "external_service_error"
	case errors.As(err, &database):
		return http.StatusInternalServerError, "database_error"
	case errors.As(err, &config):
		return http.StatusInternalServerError, "configuration_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// errorBody builds the response body for err. Messages of unclassified errors are not
// exposed.
func errorBody(err error, status int, code string) ErrorBody {
	body := ErrorBody{Error: code, Message: err.Error()}

	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		body.Message = orDefault(validation.Message, "Validation failed.")
		body.Fields = validation.Fields
	}
	var rule *apperr.BusinessRuleViolationError
	if errors.As(err, &rule) {
		body.Rule = rule.Rule
	}
	if code == "internal_error" || code == "configuration_error" {
		body.Message = http.StatusText(status)
	}
	var loadErr *schemas.SchemaLoadError
	if errors.As(err, &loadErr) {
		body.Message = http.StatusText(status)
	}
	return body
}

// writeError maps err to a response. Server-side failures are logged; expected outcomes such
// as not-found are logged at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := HTTPStatus(err)

	var rate *apperr.RateLimitExceededError
	if errors.As(err, &rate) && rate.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(rate.RetryAfter.Seconds())))
	}

	switch {
	case status >= http.StatusInternalServerError:
		attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "error", err}
		if cause, wrapped := rootCause(err); wrapped {
			attrs = append(attrs, "cause", cause)
		}
		s.logger.Error("request failed", attrs...)
	case apperr.IsExpected(err):
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	default:
		s.logger.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	s.jsonResponse(w, status, errorBody(err, status, code))
}

// rootCause follows the Unwrap chain to the innermost error and reports whether err wrapped
// anything. DatabaseError and friends keep their cause out of Error(), so the log needs it
// separately.
func rootCause(err error) (error, bool) {
	wrapped := false
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err, wrapped
		}
		err, wrapped = next, true
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
