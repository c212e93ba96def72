package orinctl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the high-level category attached to a structured error.
type ErrorCode string

const (
	ErrCodeQueueFull       ErrorCode = "queue full"
	ErrCodeDisconnected    ErrorCode = "queue disconnected"
	ErrCodeMissingTemplate ErrorCode = "missing template"
	ErrCodeCooldownActive  ErrorCode = "cooldown active"
	ErrCodeRegistryFull    ErrorCode = "registry full"
	ErrCodeUnsupported     ErrorCode = "unsupported command"
	ErrCodeBusy            ErrorCode = "busy"
	ErrCodeInvalidArgument ErrorCode = "invalid argument"
)

// Error is a structured orinctl error carrying the failed operation, the
// sequence it concerned, and—for cooldown rejections—when the sequence
// becomes admissible again.
type Error struct {
	Op      string       // Operation that failed (e.g. "enqueue", "register")
	Code    ErrorCode    // High-level category
	Seq     SequenceKind // Sequence context, SequenceKindNone if not applicable
	ReadyAt Instant      // Cooldown expiry, meaningful for ErrCodeCooldownActive
	Msg     string       // Human-readable message
	Inner   error        // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Seq != SequenceKindNone {
		parts = append(parts, fmt.Sprintf("seq=%s", e.Seq))
	}
	if e.Code == ErrCodeCooldownActive {
		parts = append(parts, fmt.Sprintf("ready-at=%dus", e.ReadyAt.Micros()))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("orinctl: %s (%s)", msg, strings.Join(parts, " "))
	}
	return fmt.Sprintf("orinctl: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches structured errors by code.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates a structured error with no sequence context.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Seq: SequenceKindNone, Msg: msg}
}

// NewSequenceError creates a structured error bound to a sequence kind.
func NewSequenceError(op string, kind SequenceKind, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Seq: kind, Msg: msg}
}

// NewCooldownError creates the rejection reported while a sequence kind is
// still cooling down.
func NewCooldownError(op string, kind SequenceKind, readyAt Instant) *Error {
	return &Error{
		Op:      op,
		Code:    ErrCodeCooldownActive,
		Seq:     kind,
		ReadyAt: readyAt,
		Msg:     fmt.Sprintf("%s cooling down", kind),
	}
}

// WrapError wraps an existing error with orinctl context.
func WrapError(op string, code ErrorCode, inner error) *Error {
	if inner == nil {
		return nil
	}
	if oe, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: oe.Code, Seq: oe.Seq, ReadyAt: oe.ReadyAt, Msg: oe.Msg, Inner: oe.Inner}
	}
	return &Error{Op: op, Code: code, Seq: SequenceKindNone, Msg: inner.Error(), Inner: inner}
}

// IsCode checks whether an error carries a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

// CooldownReadyAt extracts the retry instant from a cooldown rejection.
func CooldownReadyAt(err error) (Instant, bool) {
	var oe *Error
	if errors.As(err, &oe) && oe.Code == ErrCodeCooldownActive {
		return oe.ReadyAt, true
	}
	return 0, false
}
