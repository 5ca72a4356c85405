package logging

import apperrors "unreal-mcp-go/internal/errors"

// ErrorKind normalizes error categories for logs and metric labels.
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}
