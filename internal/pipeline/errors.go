package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MileWhile/Auramax/internal/acquire"
	"github.com/MileWhile/Auramax/internal/normalize"
)

// Error is a request-level failure with an HTTP status classification.
// Per-question provider failures never become an Error; they are isolated
// into their answer slot.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(format string, args ...any) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   "validation_error",
		Err:    fmt.Errorf(format, args...),
	}
}

// classifyErr maps acquisition and normalization failures onto client or
// server error classes.
func classifyErr(err error) *Error {
	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		return pipeErr
	}

	var acqErr *acquire.Error
	if errors.As(err, &acqErr) {
		switch acqErr.Kind {
		case acquire.KindSizeExceeded:
			return &Error{Status: http.StatusRequestEntityTooLarge, Code: "size_exceeded", Err: err}
		case acquire.KindUnsupportedScheme:
			return &Error{Status: http.StatusBadRequest, Code: "unsupported_scheme", Err: err}
		case acquire.KindTimeout:
			return &Error{Status: http.StatusGatewayTimeout, Code: "acquisition_timeout", Err: err}
		default:
			return &Error{Status: http.StatusBadGateway, Code: "network_error", Err: err}
		}
	}

	var fmtErr *normalize.UnsupportedFormatError
	if errors.As(err, &fmtErr) {
		return &Error{Status: http.StatusUnsupportedMediaType, Code: "unsupported_format", Err: err}
	}

	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}
