// Pinmap - Collaborative Map Annotation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pinmap

// Package validation provides struct validation using go-playground/validator
// v10. It exposes a thread-safe singleton instance plus a "layerkey" custom
// validator, and translates field errors into the plain messages the API
// returns in its {"error": ...} body.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// layerKeyPattern matches the allowed layer key shape: lowercase slug,
// starting with a letter.
var layerKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

// FieldError is a single failed field with a human-readable message.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Error returns the human-readable message.
func (e *FieldError) Error() string {
	return e.Message
}

// RequestError is the collection of field errors for one request.
type RequestError struct {
	fields []FieldError
}

// Fields returns the individual field errors.
func (re *RequestError) Fields() []FieldError {
	return re.fields
}

// Error joins the field messages; this is what the API serves verbatim.
func (re *RequestError) Error() string {
	if len(re.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(re.fields))
	for i, f := range re.fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance, initializing it
// on first use. Thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Built-ins cover the usual formats; only the layer key shape
		// is ours.
		if err := validate.RegisterValidation("layerkey", func(fl validator.FieldLevel) bool {
			return layerKeyPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("failed to register layerkey validator: %v", err))
		}
	})
	return validate
}

// ValidateStruct validates s and returns nil on success or a *RequestError
// whose Error() is safe to serve to clients.
func ValidateStruct(s any) *RequestError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestError{fields: []FieldError{
			{Field: "unknown", Tag: "unknown", Message: err.Error()},
		}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translateFieldError(fe),
		}
	}
	return &RequestError{fields: fields}
}

func translateFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "layerkey":
		return fmt.Sprintf("%s must be a lowercase key like 'city_parks'", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
