package di

import (
	"errors"
	"fmt"
	"reflect"
)

// Code classifies container failures into a stable, matchable taxonomy.
type Code string

const (
	// CodeUnregistered reports a resolution request for a type with no
	// visible provider record.
	CodeUnregistered Code = "UNREGISTERED_DEPENDENCY"
	// CodeUnknownRemoval reports a removal of a type or target that was
	// never registered.
	CodeUnknownRemoval Code = "UNKNOWN_REMOVAL"
	// CodeConstruction reports a failure while producing a value, such as
	// an unfillable constructor parameter or a missing struct field.
	CodeConstruction Code = "CONSTRUCTION_FAILURE"
	// CodeValidation reports an invalid registration or an invalid
	// injection description, detected before any value is produced.
	CodeValidation Code = "VALIDATION_FAILURE"
)

// Error is the error type returned by container operations. Errors raised by
// user constructors are not wrapped in Error; they propagate unchanged.
type Error struct {
	Code    Code
	Key     reflect.Type // requested type, if known
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Key != nil {
		msg = fmt.Sprintf("%s: %s", e.Key, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("di: %s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("di: %s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newUnregistered(key reflect.Type) *Error {
	return &Error{Code: CodeUnregistered, Key: key, Message: "no provider registered"}
}

func newUnknownRemoval(key reflect.Type, msg string) *Error {
	return &Error{Code: CodeUnknownRemoval, Key: key, Message: msg}
}

func newConstruction(key reflect.Type, msg string) *Error {
	return &Error{Code: CodeConstruction, Key: key, Message: msg}
}

func newValidation(key reflect.Type, msg string) *Error {
	return &Error{Code: CodeValidation, Key: key, Message: msg}
}

func codeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// IsUnregistered reports whether err is a missing-provider failure.
func IsUnregistered(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeUnregistered
}

// IsUnknownRemoval reports whether err is a removal of something never
// registered.
func IsUnknownRemoval(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeUnknownRemoval
}

// IsConstruction reports whether err is a failure raised while producing a
// value.
func IsConstruction(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeConstruction
}

// IsValidation reports whether err is an invalid registration or injection
// description.
func IsValidation(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeValidation
}
