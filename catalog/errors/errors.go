// Package errors provides the error types of catalog operations.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrTableNotFound is returned when no table is registered under a name
	ErrTableNotFound = &CatalogError{code: "table_not_found", msg: "table not found"}

	// ErrTableAlreadyExists is returned when registering a name twice
	ErrTableAlreadyExists = &CatalogError{code: "table_already_exists", msg: "table already exists"}

	// ErrInvalidDefinition is returned for table definitions that cannot be registered
	ErrInvalidDefinition = &CatalogError{code: "invalid_definition", msg: "invalid table definition"}
)

// CatalogError represents a catalog-specific error
type CatalogError struct {
	code string
	msg  string
	err  error
}

func (e *CatalogError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Code returns the error code
func (e *CatalogError) Code() string { return e.code }

func (e *CatalogError) Unwrap() error { return e.err }

// Is matches catalog errors by code
func (e *CatalogError) Is(target error) bool {
	if t, ok := target.(*CatalogError); ok {
		return e.code == t.code
	}
	return false
}

// New creates a CatalogError with a formatted message
func New(code, format string, args ...interface{}) *CatalogError {
	return &CatalogError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a catalog error
func Wrap(err error, code, format string, args ...interface{}) *CatalogError {
	return &CatalogError{code: code, msg: fmt.Sprintf(format, args...), err: err}
}

// TableNotFound reports a missing table by name
func TableNotFound(name string) *CatalogError {
	return New(ErrTableNotFound.code, "table %s not found", name)
}

// TableAlreadyExists reports a duplicate registration
func TableAlreadyExists(name string) *CatalogError {
	return New(ErrTableAlreadyExists.code, "table %s already exists", name)
}

// InvalidDefinition wraps the reason a definition was rejected
func InvalidDefinition(name string, err error) *CatalogError {
	return Wrap(err, ErrInvalidDefinition.code, "invalid definition of table %s", name)
}

func IsTableNotFoundError(err error) bool { return stderrors.Is(err, ErrTableNotFound) }

func IsTableAlreadyExistsError(err error) bool { return stderrors.Is(err, ErrTableAlreadyExists) }

func IsInvalidDefinitionError(err error) bool { return stderrors.Is(err, ErrInvalidDefinition) }
