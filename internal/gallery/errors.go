package gallery

import (
	"errors"
	"fmt"
)

// MsgServerUnreachable is shown when a request never reached the server.
// It is deliberately distinct from the per-operation fallback messages so
// the UI can tell "server said no" from "server not there".
const MsgServerUnreachable = "Cannot connect to the server. Please check that the backend is running and reachable."

// ValidationError is a local, pre-network failure. It never corresponds to
// an HTTP exchange.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError means the request could not reach the server at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return MsgServerUnreachable }
func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError means the server was reached and answered with a failure
// envelope or a non-2xx status. Unparseable response bodies are reported
// as RejectedError with the caller's generic fallback message.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnreachable reports whether err means the server could not be reached.
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejected reports whether the server rejected the request.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// UserMessage extracts the display message for any client error.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return MsgServerUnreachable
	}
	var re *RejectedError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
