// Package types defines the request and response shapes of the HTTP API and the rules that
// validate them.
//
// Field names on the wire are camelCase. Requests also accept the snake_case spelling of a
// top-level key, see DecodeRequest.
package types

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-assistant/internal/apperr"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

var validate = newValidator()

// enumMember is implemented by every vocabulary in package enums.
type enumMember interface {
	IsValid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so field errors match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "enum", func(fl validator.FieldLevel) bool {
		m, ok := fl.Field().Interface().(enumMember)
		return ok && m.IsValid()
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) >= 3 && len(s) <= 50 && usernamePattern.MatchString(s)
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return passwordOK(fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// passwordOK requires 8 to 128 characters with at least one letter and one digit.
func passwordOK(s string) bool {
	n := len([]rune(s))
	if n < 8 || n > 128 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Validate checks v against its validate tags and reports failures as an
// apperr.ValidationError with one entry per field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Invalid("body", err.Error())
	}
	out := &apperr.ValidationError{Fields: make([]apperr.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, apperr.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the struct name from the namespace, e.g. "DocumentCreate.tags[2]" -> "tags[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "ip":
		return "must be a valid IP address"
	case "enum":
		return "is not an accepted value"
	case "username":
		return "must be 3-50 letters, digits or underscores"
	case "password":
		return "must be 8-128 characters with at least one letter and one digit"
	case "phone":
		return "must be a phone number in international format"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
