package types

import (
	"errors"
	"net/http"
	"sync/atomic"

	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

const internalMessage = "internal server error"

var exposeDetail atomic.Bool

// ExposeErrorDetail controls whether 5xx bodies carry the underlying error
// text. It is enabled in development only.
func ExposeErrorDetail(on bool) { exposeDetail.Store(on) }

// StatusFor maps an error code to its HTTP status.
func StatusFor(code appErr.Code) int {
	switch code {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict:
		return http.StatusConflict
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromAppError builds the status and failure envelope for err. Messages of
// client errors are passed through; server errors get a generic message.
func FromAppError(err error) (int, APIResponse) {
	status := StatusFor(appErr.CodeOf(err))
	body := APIResponse{Success: false}

	var ae *appErr.AppError
	if status < http.StatusInternalServerError && errors.As(err, &ae) {
		body.Message = ae.Message
		return status, body
	}

	body.Message = internalMessage
	if status == http.StatusServiceUnavailable && errors.As(err, &ae) {
		body.Message = ae.Message
	}
	if exposeDetail.Load() && err != nil {
		body.Error = err.Error()
	}
	return status, body
}
