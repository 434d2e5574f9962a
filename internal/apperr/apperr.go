// Package apperr defines the structured errors returned to agents by the
// tool surface. Every failure carries a kind so the agent can distinguish
// a schema miss from a resource limit, plus an optional self-correcting
// suggestion ("Did you mean 'X'?").
package apperr

import "fmt"

// Kind classifies an error for the agent.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindSchema     Kind = "SCHEMA"
	KindLimit      Kind = "LIMIT"
	KindSession    Kind = "SESSION"
	KindStore      Kind = "STORE"
	KindUpstream   Kind = "UPSTREAM"
	KindTimeout    Kind = "TIMEOUT"
	KindSyntax     Kind = "SYNTAX_ERROR"
	KindInternal   Kind = "INTERNAL"
)

// Error is the structured error returned in tool responses.
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Path       string `json:"path,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion attaches a suggestion and returns the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithPath attaches the field path the error refers to.
func (e *Error) WithPath(p string) *Error {
	e.Path = p
	return e
}

// Validation creates a VALIDATION error.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// Schema creates a SCHEMA error.
func Schema(format string, args ...any) *Error {
	return New(KindSchema, format, args...)
}

// Limit creates a LIMIT error.
func Limit(format string, args ...any) *Error {
	return New(KindLimit, format, args...)
}

// Session creates a SESSION error.
func Session(format string, args ...any) *Error {
	return New(KindSession, format, args...)
}

// Upstream creates an UPSTREAM error.
func Upstream(format string, args ...any) *Error {
	return New(KindUpstream, format, args...)
}

// Timeout creates a TIMEOUT error.
func Timeout(format string, args ...any) *Error {
	return New(KindTimeout, format, args...)
}

// Internal creates an INTERNAL error.
func Internal(format string, args ...any) *Error {
	return New(KindInternal, format, args...)
}

// From converts any error into a structured Error, passing through
// errors that already carry a kind.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}
