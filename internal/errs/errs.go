// Package errs provides the error model shared by the enrichment engine.
//
// An Error carries a stable Code used for classification, a message,
// optional context data and an optional cause. errors.Is compares codes only,
// so a sentinel such as ErrInactiveOperations matches every error derived
// from it through WithCause or WithData.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies an error class.
type Code string

const (
	CodeInactiveOperations Code = "inactive_operations"
	CodeKeyResolution      Code = "key_resolution"
	CodeConfiguration      Code = "configuration"
	CodeContainerNotFound  Code = "container_not_found"
	CodeCondition          Code = "condition"
	CodeDepthExceeded      Code = "depth_exceeded"
	CodeDispatch           Code = "dispatch"
	CodeProperty           Code = "property"
)

var (
	ErrInactiveOperations = New(CodeInactiveOperations, "operations are not active")
	ErrKeyResolution      = New(CodeKeyResolution, "key resolution failed")
	ErrConfiguration      = New(CodeConfiguration, "invalid configuration")
	ErrContainerNotFound  = New(CodeContainerNotFound, "container not found")
	ErrCondition          = New(CodeCondition, "condition evaluation failed")
	ErrDepthExceeded      = New(CodeDepthExceeded, "disassembly depth exceeded")
	ErrDispatch           = New(CodeDispatch, "dispatch failed")
	ErrProperty           = New(CodeProperty, "property access failed")
)

// Error is a classified error.
type Error struct {
	code  Code
	msg   string
	data  map[string]any
	cause error
}

// New creates an Error without cause.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.msg == "" {
		if e.cause == nil {
			return string(e.code)
		}

		return fmt.Sprintf("%s: %v", e.code, e.cause)
	}

	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}

	return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.code == t.code
}

// Code returns the error class.
func (e *Error) Code() Code {
	if e == nil {
		return ""
	}

	return e.code
}

// Msg returns the message without code or cause.
func (e *Error) Msg() string {
	if e == nil {
		return ""
	}

	return e.msg
}

// Data returns a copy of the context data.
func (e *Error) Data() map[string]any {
	if e == nil || e.data == nil {
		return nil
	}

	return cloneMap(e.data)
}

// WithMsg returns a copy with the message replaced.
func (e *Error) WithMsg(format string, args ...any) *Error {
	next := e.clone()
	next.msg = fmt.Sprintf(format, args...)

	return next
}

// WithData returns a copy with key set in the context data.
func (e *Error) WithData(key string, value any) *Error {
	next := e.clone()
	if next.data == nil {
		next.data = make(map[string]any, 1)
	}

	next.data[key] = value

	return next
}

// WithCause returns a copy wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	next := e.clone()
	next.cause = cause

	return next
}

func (e *Error) clone() *Error {
	return &Error{
		code:  e.code,
		msg:   e.msg,
		data:  cloneMap(e.data),
		cause: e.cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return ""
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
