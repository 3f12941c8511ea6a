package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-similarity/internal/recommend"
	"github.com/jonathan/job-similarity/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string            `json:"error"`
	Kind  string            `json:"kind,omitempty"`
	Cause string            `json:"cause,omitempty"`
	Trace []types.TraceStep `json:"trace,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var verr *ErrValidation
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	switch recommend.KindOf(err) {
	case recommend.KindInvalidInput:
		return http.StatusBadRequest
	case recommend.KindNotFound:
		return http.StatusNotFound
	case recommend.KindUpstream:
		return http.StatusBadGateway
	case recommend.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err. Upstream and cancellation failures carry
// their cause for diagnostics.
func errorBody(err error) ErrorBody {
	var verr *ErrValidation
	if errors.As(err, &verr) {
		return ErrorBody{Error: verr.Error(), Kind: string(recommend.KindInvalidInput)}
	}

	var rerr *recommend.Error
	if errors.As(err, &rerr) {
		body := ErrorBody{Error: rerr.Message, Kind: string(rerr.Kind), Trace: rerr.Trace}
		if rerr.Cause != nil && (rerr.Kind == recommend.KindUpstream || rerr.Kind == recommend.KindCanceled) {
			body.Cause = rerr.Cause.Error()
		}
		return body
	}
	return ErrorBody{Error: "internal server error"}
}
