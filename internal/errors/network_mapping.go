package errors

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// MapNetworkError classifies a socket error raised during op ("dial",
// "write" or "read") into a standardized Error.
func MapNetworkError(op, command string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if stderrors.As(err, &existing) {
		return existing
	}

	kind := kindForOp(op)
	errMsg := err.Error()

	switch {
	case stderrors.Is(err, context.Canceled):
		kind = KindCanceled
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, os.ErrDeadlineExceeded):
		kind = KindTimeout
	case isTimeout(err):
		kind = KindTimeout
	case stderrors.Is(err, syscall.ECONNREFUSED), strings.Contains(errMsg, "connection refused"):
		kind = KindDial
	case strings.Contains(errMsg, "no such host"), strings.Contains(errMsg, "name resolution"):
		kind = KindDial
	case stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, syscall.ECONNRESET), strings.Contains(errMsg, "connection reset"):
		if op == "dial" {
			kind = KindDial
		} else {
			kind = KindRead
		}
	}
	return Wrap(kind, op, command, err)
}

func kindForOp(op string) Kind {
	switch op {
	case "dial":
		return KindDial
	case "write":
		return KindWrite
	case "read":
		return KindRead
	default:
		return KindInternal
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
