package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a domain failure detected by the engine or inventory.
//
// Domain errors are terminal: they describe a static mismatch in the input
// data, never a transient condition. Store failures are not Errors; they are
// returned wrapped so callers can tell the two apart.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Function is the requested function name, when relevant.
	Function string

	// Gadget is the gadget name, when relevant.
	Gadget string

	// Widget is the missing widget name (WIDGET_NOT_FOUND).
	Widget string

	// Token is the unknown correlation token (RESULT_NOT_FOUND).
	Token string
}

// ErrorCode categorizes domain errors.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a required field is missing or malformed.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeGadgetNotFound indicates the named gadget does not exist.
	ErrCodeGadgetNotFound ErrorCode = "GADGET_NOT_FOUND"

	// ErrCodeWidgetNotFound indicates a referenced widget does not exist.
	ErrCodeWidgetNotFound ErrorCode = "WIDGET_NOT_FOUND"

	// ErrCodeUnsupportedFunction indicates the gadget does not declare the function.
	ErrCodeUnsupportedFunction ErrorCode = "UNSUPPORTED_FUNCTION"

	// ErrCodeUnimplementedFunction indicates the catalog has no such function.
	ErrCodeUnimplementedFunction ErrorCode = "UNIMPLEMENTED_FUNCTION"

	// ErrCodeResultNotFound indicates no result has the given token.
	ErrCodeResultNotFound ErrorCode = "RESULT_NOT_FOUND"

	// ErrCodeAlreadyExists indicates a widget or gadget name is taken.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the domain error code of err, or "" if err is not an Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsDomainError reports whether err is an Error.
func IsDomainError(err error) bool {
	return CodeOf(err) != ""
}

// IsInvalidRequest returns true for INVALID_REQUEST errors.
func IsInvalidRequest(err error) bool {
	return CodeOf(err) == ErrCodeInvalidRequest
}

// IsNotFound returns true for gadget, widget and result not-found errors.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeGadgetNotFound, ErrCodeWidgetNotFound, ErrCodeResultNotFound:
		return true
	}
	return false
}

// IsUnsupported returns true when the function is not declared by the gadget
// or not implemented by the catalog.
func IsUnsupported(err error) bool {
	switch CodeOf(err) {
	case ErrCodeUnsupportedFunction, ErrCodeUnimplementedFunction:
		return true
	}
	return false
}

// NewInvalidRequestError creates an INVALID_REQUEST error naming the missing fields.
func NewInvalidRequestError(missing ...string) *Error {
	return &Error{
		Code:    ErrCodeInvalidRequest,
		Message: fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")),
	}
}

// NewGadgetNotFoundError creates a GADGET_NOT_FOUND error.
func NewGadgetNotFoundError(gadget string) *Error {
	return &Error{
		Code:    ErrCodeGadgetNotFound,
		Message: fmt.Sprintf("gadget %q does not exist", gadget),
		Gadget:  gadget,
	}
}

// NewWidgetNotFoundError creates a WIDGET_NOT_FOUND error. gadget may be
// empty when the widget was looked up directly.
func NewWidgetNotFoundError(widget, gadget string) *Error {
	msg := fmt.Sprintf("widget %q does not exist", widget)
	if gadget != "" {
		msg = fmt.Sprintf("widget %q referenced by gadget %q does not exist", widget, gadget)
	}
	return &Error{
		Code:    ErrCodeWidgetNotFound,
		Message: msg,
		Gadget:  gadget,
		Widget:  widget,
	}
}

// NewUnsupportedError creates an UNSUPPORTED_FUNCTION error.
func NewUnsupportedError(function, gadget string) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedFunction,
		Message:  fmt.Sprintf("gadget %q does not support function %q", gadget, function),
		Function: function,
		Gadget:   gadget,
	}
}

// NewUnimplementedError creates an UNIMPLEMENTED_FUNCTION error.
func NewUnimplementedError(function, gadget string) *Error {
	return &Error{
		Code:     ErrCodeUnimplementedFunction,
		Message:  fmt.Sprintf("function %q is not implemented", function),
		Function: function,
		Gadget:   gadget,
	}
}

// NewResultNotFoundError creates a RESULT_NOT_FOUND error.
func NewResultNotFoundError(token string) *Error {
	return &Error{
		Code:    ErrCodeResultNotFound,
		Message: fmt.Sprintf("no function result with token %q", token),
		Token:   token,
	}
}

// NewAlreadyExistsError creates an ALREADY_EXISTS error for a widget or gadget.
func NewAlreadyExistsError(kind, name string) *Error {
	e := &Error{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("%s %q already exists", kind, name),
	}
	switch kind {
	case "gadget":
		e.Gadget = name
	case "widget":
		e.Widget = name
	}
	return e
}
