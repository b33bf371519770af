package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
)

// maxBodyBytes bounds request bodies read by DecodeRequest.
const maxBodyBytes = 1 << 20

// CamelToSnake converts camelCase to snake_case: an underscore goes before every upper-case
// letter except a leading one, then the result is lower-cased.
func CamelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// SnakeToCamel converts snake_case to camelCase. The first word is kept as is; each later
// word is capitalized and the rest of it lower-cased.
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// NormalizeKeys rewrites snake_case top-level keys of a JSON object to camelCase. When both
// spellings are present the camelCase one wins.
func NormalizeKeys(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if strings.Contains(k, "_") {
			continue
		}
		out[k] = v
	}
	for k, v := range fields {
		if !strings.Contains(k, "_") {
			continue
		}
		camel := SnakeToCamel(k)
		if _, taken := out[camel]; !taken {
			out[camel] = v
		}
	}
	return out
}

// DecodeRequest reads a JSON object from r into dst, accepting either key spelling, and then
// validates dst. Every failure is an apperr.ValidationError.
func DecodeRequest(r io.Reader, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return apperr.Invalid("body", "could not read request body")
	}
	if len(body) > maxBodyBytes {
		return apperr.Invalid("body", "request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.Invalid("body", "request body required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return apperr.Invalid("body", "must be a JSON object")
	}
	normalized, err := json.Marshal(NormalizeKeys(fields))
	if err != nil {
		return apperr.Invalid("body", "must be a JSON object")
	}

	if err := json.Unmarshal(normalized, dst); err != nil {
		return decodeError(err)
	}
	if v, ok := dst.(validatable); ok {
		return v.Validate()
	}
	return Validate(dst)
}

// validatable is implemented by requests with rules beyond their struct tags.
type validatable interface {
	Validate() error
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Invalid(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type))
	}
	var enumErr *enums.InvalidValueError
	if errors.As(err, &enumErr) {
		return apperr.Invalid("body", enumErr.Error())
	}
	return apperr.Invalid("body", err.Error())
}
