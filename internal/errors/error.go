package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryEvaluation Category = "evaluation"
	CategoryCallback   Category = "callback"
	CategoryScheduler  Category = "scheduler"
	CategoryStructure  Category = "structure"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// Severity distinguishes diagnostics that abort an evaluation from
// advisory warnings about misuse.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ReactorError is a structured diagnostic with a code, the component it
// was raised in and a hint for fixing it.
type ReactorError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (evaluation, callback, etc.).
	Category Category

	// Severity tells whether the error is advisory.
	Severity Severity

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Component names the component the error was raised in, if any.
	Component string

	// Info describes where inside the component it happened
	// (e.g. "render function", `callback for watcher "a.b"`).
	Info string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactorError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Info != "" {
		b.WriteString(" in ")
		b.WriteString(e.Info)
	}
	if e.Component != "" {
		fmt.Fprintf(&b, " (found in <%s>)", e.Component)
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *ReactorError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *ReactorError) WithSuggestion(s string) *ReactorError {
	e.Suggestion = s
	return e
}

// WithDetail adds detailed explanation.
func (e *ReactorError) WithDetail(d string) *ReactorError {
	e.Detail = d
	return e
}

// In records the component and the place inside it.
func (e *ReactorError) In(component, info string) *ReactorError {
	e.Component = component
	e.Info = info
	return e
}

// Wrap wraps an underlying error.
func (e *ReactorError) Wrap(err error) *ReactorError {
	e.Wrapped = err
	return e
}

// New creates a ReactorError from a registered error code.
func New(code string) *ReactorError {
	template, ok := registry[code]
	if !ok {
		return &ReactorError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactorError{
		Code:       code,
		Category:   template.Category,
		Severity:   template.Severity,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new ReactorError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReactorError {
	return &ReactorError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReactorError.
func FromError(err error, code string) *ReactorError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReactorError); ok {
		return re
	}
	return New(code).Wrap(err)
}
