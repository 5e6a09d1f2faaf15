// Package apperr defines the error taxonomy shared by the submission pipeline.
//
// Run-level errors (ValidationError, CompatibilityError, ConfigError) stop a run before
// any browser work. Record-level errors (NavigationError, PageNotFoundError, AgentError)
// are recorded against a single application and never abort sibling records.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRange = errors.New("invalid experience range")
	ErrNoAgents     = errors.New("no registered form agents available")
)

// FieldError is a single failed constraint on an applicant record.
type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Record int
	Fields []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	msg := strings.Join(parts, "; ")
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Record >= 0 {
		return fmt.Sprintf("validation error in record %d: %s", e.Record, msg)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// InvalidRangeError is returned when a range label has its minimum above its maximum.
type InvalidRangeError struct {
	Text string
	Min  int
	Max  int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid years of experience range %q: minimum %d is greater than maximum %d", e.Text, e.Min, e.Max)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

type CompatibilityError struct {
	Agent string
	URL   string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("invalid or incompatible URL %q for %q", e.URL, e.Agent)
}

type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

type NavigationError struct {
	URL    string
	Status int
	Reason string
	Cause  error
}

func (e *NavigationError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = "failed to navigate"
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s to %s: %v", msg, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s to %s", msg, e.URL)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// PageNotFoundError is a NavigationError for a 404 response.
type PageNotFoundError struct {
	NavigationError
}

func NewPageNotFound(url string) *PageNotFoundError {
	return &PageNotFoundError{NavigationError{URL: url, Status: 404, Reason: "page not found"}}
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found: %s", e.URL)
}

// As lets errors.As(err, **NavigationError) match a PageNotFoundError too.
func (e *PageNotFoundError) As(target any) bool {
	if t, ok := target.(**NavigationError); ok {
		*t = &e.NavigationError
		return true
	}
	return false
}

type AgentError struct {
	Agent   string
	Message string
	Cause   error
}

func NewAgentError(agent, format string, args ...any) *AgentError {
	return &AgentError{Agent: agent, Message: fmt.Sprintf(format, args...)}
}

func (e *AgentError) Error() string {
	prefix := "agent error"
	if e.Agent != "" {
		prefix = fmt.Sprintf("agent error [%s]", e.Agent)
	}
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

// IsRecordScoped reports whether err affects a single application only.
func IsRecordScoped(err error) bool {
	var nav *NavigationError
	var agent *AgentError
	switch {
	case errors.As(err, &nav), errors.As(err, &agent):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// UnknownAgentError is returned when a form agent name is not registered.
type UnknownAgentError struct {
	Name      string
	Available []string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown form agent %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
