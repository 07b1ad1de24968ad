package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category with a stable string for testing
// and for user-facing output.
type ErrorCode string

const (
	// General errors
	ErrUnknown    ErrorCode = "UNKNOWN"
	ErrInternal   ErrorCode = "INTERNAL"
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// Input validation
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Registry errors
	ErrUnknownProfile  ErrorCode = "UNKNOWN_PROFILE"
	ErrRegistryPersist ErrorCode = "REGISTRY_PERSIST"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Provisioning errors
	ErrInstallerFailed ErrorCode = "INSTALLER_FAILED"
	ErrVersionControl  ErrorCode = "VERSION_CONTROL"

	// Change-tracking errors
	ErrPrivilegeUnavailable ErrorCode = "PRIVILEGE_UNAVAILABLE"

	// Reconciler guard errors
	ErrUnsafeOverwrite     ErrorCode = "UNSAFE_OVERWRITE"
	ErrDestinationNotEmpty ErrorCode = "DESTINATION_NOT_EMPTY"
	ErrPartialAdopt        ErrorCode = "PARTIAL_ADOPT"
	ErrAlreadyLinked       ErrorCode = "ALREADY_LINKED"
	ErrNothingToAdopt      ErrorCode = "NOTHING_TO_ADOPT"
	ErrSymlinkCreate       ErrorCode = "SYMLINK_CREATE"
	ErrAborted             ErrorCode = "ABORTED"

	// Launcher / session errors
	ErrLaunchScriptMissing ErrorCode = "LAUNCH_SCRIPT_MISSING"
)

// BurrowError is a structured error carrying a code, a message, optional
// details, and the wrapped cause.
type BurrowError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface.
func (e *BurrowError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *BurrowError) Unwrap() error {
	return e.Wrapped
}

// Is matches two BurrowErrors by code, so sentinel-style comparisons with
// errors.Is work across independently constructed instances.
func (e *BurrowError) Is(target error) bool {
	var targetErr *BurrowError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *BurrowError {
	return &BurrowError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates an error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *BurrowError {
	return &BurrowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error under a code. Returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *BurrowError {
	if err == nil {
		return nil
	}
	return &BurrowError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BurrowError {
	if err == nil {
		return nil
	}
	return &BurrowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail attaches a key/value detail to the error.
func (e *BurrowError) WithDetail(key string, value interface{}) *BurrowError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRemedy records the exact command the operator should run to recover.
// The CLI prints it below the error message.
func (e *BurrowError) WithRemedy(command string) *BurrowError {
	return e.WithDetail("remedy", command)
}

// Remedy returns the remedial command attached to err, if any.
func Remedy(err error) string {
	var be *BurrowError
	if errors.As(err, &be) {
		if r, ok := be.Details["remedy"].(string); ok {
			return r
		}
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var be *BurrowError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// GetCode returns the code on err, or ErrUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	var be *BurrowError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrUnknown
}
