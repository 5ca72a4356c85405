package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for logs, metrics, HTTP mapping and exit codes.
type Kind string

const (
	KindDial            Kind = "dial"
	KindTimeout         Kind = "timeout"
	KindWrite           Kind = "write"
	KindRead            Kind = "read"
	KindProtocol        Kind = "protocol"
	KindCommand         Kind = "command"
	KindCanceled        Kind = "canceled"
	KindInvalidArgument Kind = "invalid_argument"
	KindConfig          Kind = "config"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Error is the standardized error carried across the client, runner and bridge.
type Error struct {
	Kind    Kind
	Op      string
	Command string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Command != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Command)
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(msg)
	}
	if b.Len() == 0 {
		return string(e.Kind)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, op, command, message string) *Error {
	return &Error{Kind: kind, Op: op, Command: command, Message: message}
}

// Wrap builds an Error of the given kind around err.
func Wrap(kind Kind, op, command string, err error) *Error {
	return &Error{Kind: kind, Op: op, Command: command, Err: err}
}

// Newf is New with a formatted message.
func Newf(kind Kind, op, command, format string, args ...any) *Error {
	return New(kind, op, command, fmt.Sprintf(format, args...))
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when none is present. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether an operation failing with kind may be retried
// without replaying a command the editor may already have executed.
func Retryable(kind Kind) bool {
	return kind == KindDial
}

// Truncate caps a message for logs and error payloads.
func Truncate(msg string, max int) string {
	if max <= 0 || len(msg) <= max {
		return msg
	}
	return msg[:max] + "..."
}
