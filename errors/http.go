package errors

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPStatus maps an error class to the status code returned by the gateway.
// Anything unclassified is an internal failure.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the message that may be shown to the caller.
// Internal failures never leak their cause.
func Reason(err error) string {
	for _, class := range []error{ErrInvalidRequest, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrUpstreamIO} {
		if !errors.Is(err, class) {
			continue
		}
		msg, prefix := err.Error(), class.Error()+": "
		if i := strings.LastIndex(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
		return class.Error()
	}
	return "internal error"
}
