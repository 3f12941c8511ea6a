// Package recommend runs the similar-jobs pipeline: load the reference job, fetch candidates,
// score them, apply the diversity cap and format the response.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-similarity/internal/types"
)

// ErrorKind classifies engine failures.
type ErrorKind string

// Error kinds
const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNotFound     ErrorKind = "not_found"
	KindUpstream     ErrorKind = "upstream_failure"
	KindCanceled     ErrorKind = "canceled"
)

// Error is returned by Engine.Recommend for every failed request.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
	// Trace lists the steps completed before the failure. Only set for debug requests.
	Trace []types.TraceStep
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidInput(cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: "invalid request: " + describeValidation(cause), Cause: cause}
}

// upstream wraps a collaborator failure, reporting cancellation separately.
func upstream(message string, cause error) *Error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return canceled(cause)
	}
	return &Error{Kind: KindUpstream, Message: message, Cause: cause}
}

func canceled(cause error) *Error {
	return &Error{Kind: KindCanceled, Message: "request canceled", Cause: cause}
}

// describeValidation turns validator output into "Field: rule" pairs.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return strings.Join(parts, ", ")
}
