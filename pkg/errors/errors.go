// Package errors provides the structured error type used across pkgpsm.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing and
// programmatic dispatch on failure kind.
type ErrorCode string

const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Stage errors
	ErrStageFailed       ErrorCode = "STAGE_FAILED"
	ErrNegativeInstCount ErrorCode = "NEGATIVE_INSTALL_COUNT"
	ErrChrootEnter       ErrorCode = "CHROOT_ENTER"
	ErrChrootExit        ErrorCode = "CHROOT_EXIT"

	// Script errors
	ErrScriptBlocking ErrorCode = "SCRIPT_BLOCKING_FAILED"
	ErrScriptRun      ErrorCode = "SCRIPT_RUN"

	// Trigger errors
	ErrTriggerCount ErrorCode = "TRIGGER_COUNT_NEGATIVE"
	ErrTriggerRun   ErrorCode = "TRIGGER_RUN"

	// Payload errors
	ErrPayloadInstall ErrorCode = "PAYLOAD_INSTALL"
	ErrPayloadRemove  ErrorCode = "PAYLOAD_REMOVE"

	// Database errors
	ErrDBCount    ErrorCode = "DB_COUNT"
	ErrDBAdd      ErrorCode = "DB_ADD"
	ErrDBRemove   ErrorCode = "DB_REMOVE"
	ErrDBIterator ErrorCode = "DB_ITERATOR"

	// Source package errors
	ErrSourcePkgRead       ErrorCode = "SOURCEPKG_READ"
	ErrSourcePkgNotSource  ErrorCode = "SOURCEPKG_NOT_SOURCE"
	ErrSourcePkgRpmlib     ErrorCode = "SOURCEPKG_MISSING_FEATURES"
	ErrSourcePkgNoSpecFile ErrorCode = "SOURCEPKG_NO_SPECFILE"

	// CLI errors
	ErrManifestLoad ErrorCode = "MANIFEST_LOAD"
	ErrReportWrite  ErrorCode = "REPORT_WRITE"
)

// PSMError is a structured error with a stable code and optional details,
// wrapping an underlying cause when one exists.
type PSMError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *PSMError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PSMError) Unwrap() error {
	return e.Wrapped
}

// Is allows errors.Is(err, &PSMError{Code: X}) comparisons by code.
func (e *PSMError) Is(target error) bool {
	var targetErr *PSMError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PSMError with the given code and message.
func New(code ErrorCode, message string) *PSMError {
	return &PSMError{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Newf creates a new PSMError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PSMError {
	return &PSMError{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]interface{})}
}

// Wrap wraps an existing error with a PSMError. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *PSMError {
	if err == nil {
		return nil
	}
	return &PSMError{Code: code, Message: message, Details: make(map[string]interface{}), Wrapped: err}
}

// Wrapf wraps an existing error with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PSMError {
	if err == nil {
		return nil
	}
	return &PSMError{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]interface{}), Wrapped: err}
}

// WithDetail attaches a single key/value detail and returns the error for chaining.
func (e *PSMError) WithDetail(key string, value interface{}) *PSMError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether err is a PSMError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var psmErr *PSMError
	if errors.As(err, &psmErr) {
		return psmErr.Code == code
	}
	return false
}

// Code returns the error's code, or ErrUnknown if err is not a PSMError.
func Code(err error) ErrorCode {
	var psmErr *PSMError
	if errors.As(err, &psmErr) {
		return psmErr.Code
	}
	return ErrUnknown
}