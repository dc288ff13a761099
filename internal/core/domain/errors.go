package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested complaint does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a complaint with the same id is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown export format or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSubmissionFailed is the only non-validation error a submitter sees.
	ErrSubmissionFailed = errors.New("complaint could not be recorded")

	// Analysis Errors.

	// ErrProviderFailure indicates the remote analysis provider failed,
	// timed out, or returned a response outside the expected schema.
	ErrProviderFailure = errors.New("analysis provider failure")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Remote analysis and remote narration are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Export Errors.

	// ErrExport is the parent of every export failure.
	ErrExport = errors.New("export failed")

	// ErrNoData indicates a format that needs records received none.
	ErrNoData = errors.New("no data")

	// ErrWriteFailure indicates the artifact could not be written.
	ErrWriteFailure = errors.New("write failure")

	// Authentication Errors.

	// ErrAuthRequired indicates an operator session is required.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the operator session has expired.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the operator credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// ExportError describes a failed export with the format and the reason.
// It matches ErrExport and the wrapped cause under errors.Is.
type ExportError struct {
	Format ExportFormat
	Reason string
	Err    error
}

// NewExportError builds an ExportError whose reason is taken from the cause.
func NewExportError(format ExportFormat, err error) *ExportError {
	reason := "render failure"
	switch {
	case errors.Is(err, ErrNoData):
		reason = ErrNoData.Error()
	case errors.Is(err, ErrWriteFailure):
		reason = ErrWriteFailure.Error()
	case errors.Is(err, ErrUnsupportedType):
		reason = "unsupported format"
	}
	return &ExportError{Format: format, Reason: reason, Err: err}
}

func (e *ExportError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Reason {
		return fmt.Sprintf("export %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("export %s: %s: %v", e.Format, e.Reason, e.Err)
}

// Unwrap returns the cause.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is makes every ExportError match ErrExport.
func (e *ExportError) Is(target error) bool {
	return target == ErrExport
}
