package runconfig

import "errors"

// Stable machine codes for the four configuration failure classes.
// Configuration errors are unrecoverable precondition failures: the loader
// surfaces the first one and the run must not start.
const (
	CodeMissingField = "CFG_E_MISSING_FIELD"
	CodeTypeMismatch = "CFG_E_TYPE_MISMATCH"
	CodeInvariant    = "CFG_E_INVARIANT"
	CodeUnknownField = "CFG_E_UNKNOWN_FIELD"
)

// MissingFieldError reports a required field that is absent, or an
// environment variable reference that did not resolve.
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string {
	if e.Message == "" {
		return "missing required field " + e.Field
	}
	return e.Message + " (" + e.Field + ")"
}

// TypeMismatchError reports a value whose kind does not match the schema,
// e.g. world_size given as a string.
type TypeMismatchError struct {
	Field   string
	Message string
}

func (e *TypeMismatchError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// InvariantViolationError reports a well-typed value that breaks a
// cross-field or range invariant.
type InvariantViolationError struct {
	Field   string
	Message string
}

func (e *InvariantViolationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// UnknownFieldError reports a key the schema does not define. Suppressed by
// Options.Permissive.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return "unknown field " + e.Field
}

// ErrorCode maps a loader error to its stable code, or "" for errors outside
// the taxonomy (I/O failures and the like).
func ErrorCode(err error) string {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return CodeMissingField
	}
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		return CodeTypeMismatch
	}
	var invariant *InvariantViolationError
	if errors.As(err, &invariant) {
		return CodeInvariant
	}
	var unknown *UnknownFieldError
	if errors.As(err, &unknown) {
		return CodeUnknownField
	}
	return ""
}

// ErrorField returns the offending field path when the error carries one.
func ErrorField(err error) string {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return missing.Field
	}
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		return mismatch.Field
	}
	var invariant *InvariantViolationError
	if errors.As(err, &invariant) {
		return invariant.Field
	}
	var unknown *UnknownFieldError
	if errors.As(err, &unknown) {
		return unknown.Field
	}
	return ""
}
