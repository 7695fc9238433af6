// Package mcperr defines the error taxonomy shared by the session manager
// and the RPC dispatcher: a single {code, message, data} shape that every
// domain failure collapses into before it reaches a client.
package mcperr

import (
	"errors"
	"fmt"

	"github.com/gravitational/trace"
)

// Code is one of the fixed RPC error codes from the wire protocol.
type Code int

const (
	InvalidParams            Code = 1001
	SessionNotFound          Code = 1002
	EngineUnavailable        Code = 2000
	TargetMissing            Code = 2001
	ProcessMissing           Code = 2002
	AttachFailed             Code = 2003
	BreakpointError          Code = 3001
	WatchpointError          Code = 3002
	MemoryAccessFailed       Code = 5001
	LaunchNotAllowed         Code = 7001
	AttachNotAllowed         Code = 7002
	TargetOutsideAllowedRoot Code = 7003
	Internal                 Code = 9999
)

// Error is the domain error type raised by every Session Manager operation.
// It wraps an optional underlying cause with github.com/gravitational/trace,
// which records a stack trace on the cause, while still exposing the flat
// {code,message,data} shape the wire protocol needs. Nothing writes that
// trace to app.log.
type Error struct {
	Code    Code
	Message string
	Data    map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// ToPayload renders the error as the wire {code,message,data} object.
func (e *Error) ToPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"code":    int(e.Code),
		"message": e.Message,
	}
	if len(e.Data) > 0 {
		payload["data"] = e.Data
	}
	return payload
}

// New builds a domain error with no underlying cause.
func New(code Code, message string, data map[string]interface{}) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// Wrap attaches a domain code to an arbitrary error, capturing a trace on
// the cause that trace.DebugReport can render. Internalf builds on it for
// the catch-all 9999 internal classification.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, cause: trace.Wrap(err)}
}

// As unwraps err down to the *Error it carries, if any.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Convenience constructors, one per taxonomy code.

func InvalidParamsf(format string, args ...interface{}) *Error {
	return New(InvalidParams, fmt.Sprintf(format, args...), nil)
}

func SessionNotFoundErr(sessionID string) *Error {
	return New(SessionNotFound, "session not found", map[string]interface{}{"sessionId": sessionID})
}

func EngineUnavailableErr() *Error {
	return New(EngineUnavailable, "debugger engine unavailable", nil)
}

func TargetMissingErr() *Error {
	return New(TargetMissing, "no target bound for session", nil)
}

func TargetCreationFailedErr(file string) *Error {
	return New(TargetMissing, "target creation failed", map[string]interface{}{"file": file})
}

func ProcessMissingErr() *Error {
	return New(ProcessMissing, "no process bound for session", nil)
}

func ThreadMissingErr(threadID uint64) *Error {
	return New(ProcessMissing, "thread not found", map[string]interface{}{"threadId": threadID})
}

func AttachFailedErr() *Error {
	return New(AttachFailed, "attach completed without a valid process", nil)
}

func BreakpointErrorf(format string, args ...interface{}) *Error {
	return New(BreakpointError, fmt.Sprintf(format, args...), nil)
}

func WatchpointErrorf(format string, args ...interface{}) *Error {
	return New(WatchpointError, fmt.Sprintf(format, args...), nil)
}

func MemoryAccessFailedErr(reason string) *Error {
	return New(MemoryAccessFailed, "memory access failed", map[string]interface{}{"reason": reason})
}

func LaunchNotAllowedErr() *Error {
	return New(LaunchNotAllowed, "launch is not permitted by policy", nil)
}

func AttachNotAllowedErr() *Error {
	return New(AttachNotAllowed, "attach is not permitted by policy", nil)
}

func TargetOutsideAllowedRootErr(file, root string) *Error {
	return New(TargetOutsideAllowedRoot, "target path is outside the allowed root",
		map[string]interface{}{"file": file, "allowedRoot": root})
}

func Internalf(err error, format string, args ...interface{}) *Error {
	return Wrap(Internal, fmt.Sprintf(format, args...), err)
}
