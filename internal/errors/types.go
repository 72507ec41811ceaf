package errors

import "errors"

var (
	ErrUsage             = errors.New("invalid usage")
	ErrSettingsInvalid   = errors.New("settings invalid")
	ErrDaemonUnavailable = errors.New("container daemon unavailable")
	ErrImageFailed       = errors.New("image operation failed")
	ErrContainerFailed   = errors.New("container operation failed")
	ErrStateFailed       = errors.New("state file operation failed")
)

// PyrunError attaches user-facing context to a failure: where it happened,
// what caused it, and what to try next. Container-phase failures are not
// wrapped this way; the daemon's own output is the user-visible result.
type PyrunError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *PyrunError) Error() string {
	return e.OriginalErr.Error()
}

func (e *PyrunError) Unwrap() error {
	return e.OriginalErr
}

func NewPyrunError(errorType error, context, cause, suggestion string, originalErr error) *PyrunError {
	return &PyrunError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewSettingsError(context, cause, suggestion string, originalErr error) *PyrunError {
	return NewPyrunError(ErrSettingsInvalid, context, cause, suggestion, originalErr)
}

func NewDaemonError(context, cause, suggestion string, originalErr error) *PyrunError {
	return NewPyrunError(ErrDaemonUnavailable, context, cause, suggestion, originalErr)
}

func NewImageError(context, cause, suggestion string, originalErr error) *PyrunError {
	return NewPyrunError(ErrImageFailed, context, cause, suggestion, originalErr)
}

func NewContainerError(context, cause, suggestion string, originalErr error) *PyrunError {
	return NewPyrunError(ErrContainerFailed, context, cause, suggestion, originalErr)
}

func NewStateError(context, cause, suggestion string, originalErr error) *PyrunError {
	return NewPyrunError(ErrStateFailed, context, cause, suggestion, originalErr)
}
