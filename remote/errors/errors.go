// Package errors provides the error taxonomy of the remote scan adapter.
package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guileen/remotetable/logger"
)

// Error codes for different types of errors
const (
	ErrCodeUnknown           = "unknown_error"
	ErrCodeSchemaMismatch    = "schema_mismatch"
	ErrCodeColumnNotFound    = "column_not_found"
	ErrCodeConnection        = "connection_error"
	ErrCodeTransform         = "transform_error"
	ErrCodeContractViolation = "contract_violation"
	ErrCodeInvalidArgument   = "invalid_argument"
)

// RemoteError is the error type returned by the remote scan adapter
type RemoteError struct {
	Code    string
	Message string
	Op      string
	Err     error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	msg := e.Message
	if e.Err != nil && e.Err.Error() != msg {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap implements the unwrap interface for error chaining
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a RemoteError with the same code
func (e *RemoteError) Is(target error) bool {
	if t, ok := target.(*RemoteError); ok {
		return e.Code == t.Code
	}
	return false
}

// Log logs the error with the global logger
func (e *RemoteError) Log(ctx context.Context, logLevel slog.Level) {
	logFields := []any{
		"error_code", e.Code,
		"operation", e.Op,
		"message", e.Message,
	}
	if e.Err != nil {
		logFields = append(logFields, "cause", e.Err.Error())
	}

	switch logLevel {
	case slog.LevelDebug:
		logger.DebugContext(ctx, "Remote scan error", logFields...)
	case slog.LevelInfo:
		logger.InfoContext(ctx, "Remote scan error", logFields...)
	case slog.LevelWarn:
		logger.WarnContext(ctx, "Remote scan error", logFields...)
	default:
		logger.ErrorContext(ctx, "Remote scan error", logFields...)
	}
}

// New creates a new RemoteError
func New(code, message string) *RemoteError {
	return &RemoteError{Code: code, Message: message}
}

// Errorf creates a new RemoteError with formatted message
func Errorf(code, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and operation
func Wrap(err error, code, op string) *RemoteError {
	return &RemoteError{Code: code, Message: err.Error(), Op: op, Err: err}
}

// Wrapf wraps an existing error with formatted context
func Wrapf(err error, code, op, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: code, Message: fmt.Sprintf(format, args...), Op: op, Err: err}
}

func NewSchemaMismatchf(op, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: ErrCodeSchemaMismatch, Message: fmt.Sprintf(format, args...), Op: op}
}

func NewColumnNotFound(op, column string, cause error) *RemoteError {
	return &RemoteError{
		Code:    ErrCodeColumnNotFound,
		Message: fmt.Sprintf("column %q not found", column),
		Op:      op,
		Err:     cause,
	}
}

func NewConnectionError(op string, err error) *RemoteError {
	return &RemoteError{Code: ErrCodeConnection, Message: "remote query failed", Op: op, Err: err}
}

func NewTransformError(op string, err error) *RemoteError {
	return &RemoteError{Code: ErrCodeTransform, Message: "transform failed", Op: op, Err: err}
}

func NewTransformErrorf(op, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: ErrCodeTransform, Message: fmt.Sprintf(format, args...), Op: op}
}

func NewInvalidArgumentf(op, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...), Op: op}
}

func NewContractViolationf(op, format string, args ...interface{}) *RemoteError {
	return &RemoteError{Code: ErrCodeContractViolation, Message: fmt.Sprintf(format, args...), Op: op}
}

func hasCode(err error, code string) bool {
	var e *RemoteError
	return errors.As(err, &e) && e.Code == code
}

// IsSchemaMismatch checks if an error is a schema mismatch
func IsSchemaMismatch(err error) bool { return hasCode(err, ErrCodeSchemaMismatch) }

// IsColumnNotFound checks if an error reports a missing column
func IsColumnNotFound(err error) bool { return hasCode(err, ErrCodeColumnNotFound) }

// IsConnectionError checks if an error came from the remote connection
func IsConnectionError(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsTransformError checks if an error came from a transform
func IsTransformError(err error) bool { return hasCode(err, ErrCodeTransform) }

// IsContractViolation checks if an error is a contract violation
func IsContractViolation(err error) bool { return hasCode(err, ErrCodeContractViolation) }

// IsInvalidArgument checks if an error reports an invalid argument
func IsInvalidArgument(err error) bool { return hasCode(err, ErrCodeInvalidArgument) }

// LogError logs an error at error level
func LogError(ctx context.Context, err error) {
	var e *RemoteError
	if errors.As(err, &e) {
		e.Log(ctx, slog.LevelError)
		return
	}
	logger.ErrorContext(ctx, "Unexpected error occurred", "error", err.Error())
}

// LogWarning logs an error at warning level
func LogWarning(ctx context.Context, err error) {
	var e *RemoteError
	if errors.As(err, &e) {
		e.Log(ctx, slog.LevelWarn)
		return
	}
	logger.WarnContext(ctx, "Unexpected error occurred", "error", err.Error())
}
