package tracking

import (
	"github.com/samber/oops"
)

// Error codes surfaced to producers and logs
const (
	ErrCodeInvalidReport = "INVALID_REPORT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternal      = "INTERNAL"
)

// NewValidationError creates an error for a rejected report, naming
// the offending field so producers get a precise 400 response.
func NewValidationError(field, message string) error {
	return oops.
		Code(ErrCodeInvalidReport).
		In("tracking").
		With("field", field).
		Errorf("invalid report: field %q %s", field, message)
}

// NewInternalError creates an error for internal invariant violations
func NewInternalError(message string) error {
	return oops.
		Code(ErrCodeInternal).
		In("tracking").
		Errorf("%s", message)
}

// WrapInternalError wraps an existing error with internal context
func WrapInternalError(err error, message string) error {
	return oops.
		Code(ErrCodeInternal).
		In("tracking").
		Wrapf(err, "%s", message)
}

// IsValidationError reports whether an error is a report validation error
func IsValidationError(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == ErrCodeInvalidReport
}

// ValidationField extracts the offending field name from a validation
// error, or "" when the error carries none.
func ValidationField(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if field, ok := oopsErr.Context()["field"].(string); ok {
		return field
	}
	return ""
}
