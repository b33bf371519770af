// Package enums defines the closed vocabularies used by entity status and type fields.
//
// Every vocabulary is a string type whose zero value is invalid. Values outside the declared
// member set are rejected when parsed, when decoded from JSON and when scanned from the database,
// so an invalid member never reaches the entity layer.
package enums

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// InvalidValueError reports a value that is not a member of a vocabulary.
type InvalidValueError struct {
	Enum  string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value: %q", e.Enum, e.Value)
}

// Definition describes a vocabulary as it is registered in the database type catalog.
type Definition struct {
	Name   string
	Values []string
}

func parse[T ~string](enum string, members []T, s string) (T, error) {
	v := T(s)
	if !slices.Contains(members, v) {
		var zero T
		return zero, &InvalidValueError{Enum: enum, Value: s}
	}
	return v, nil
}

func unmarshal[T ~string](enum string, members []T, data []byte, dst *T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%s must be a string: %w", enum, err)
	}
	v, err := parse(enum, members, s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func scan[T ~string](enum string, members []T, src any, dst *T) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return fmt.Errorf("cannot scan NULL into %s", enum)
	default:
		return fmt.Errorf("cannot scan %T into %s", src, enum)
	}
	v, err := parse(enum, members, s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func value[T ~string](enum string, members []T, v T) (driver.Value, error) {
	if !slices.Contains(members, v) {
		return nil, &InvalidValueError{Enum: enum, Value: string(v)}
	}
	return string(v), nil
}

func strs[T ~string](members []T) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = string(m)
	}
	return out
}

// Catalog returns the canonical definition of every vocabulary, keyed by database type name.
func Catalog() []Definition {
	return []Definition{
		{Name: "user_role", Values: strs(userRoles)},
		{Name: "sso_provider", Values: strs(ssoProviders)},
		{Name: "job_type", Values: strs(jobTypes)},
		{Name: "job_application_status", Values: strs(jobApplicationStatuses)},
		{Name: "job_application_source", Values: strs(jobApplicationSources)},
		{Name: "job_application_priority", Values: strs(jobApplicationPriorities)},
		{Name: "assistant_step_type", Values: strs(assistantStepTypes)},
		{Name: "assistant_step_status", Values: strs(assistantStepStatuses)},
		{Name: "document_type", Values: strs(documentTypes)},
		{Name: "document_status", Values: strs(documentStatuses)},
		{Name: "document_visibility", Values: strs(documentVisibilities)},
		{Name: "document_source", Values: strs(documentSources)},
		{Name: "document_version", Values: strs(documentVersions)},
		{Name: "mime_type", Values: strs(mimeTypes)},
		{Name: "file_type", Values: strs(fileTypes)},
	}
}

// Lookup returns the canonical definition with the given database type name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
