package errors

import (
	stderrors "errors"
	"net/http"

	"unreal-mcp-go/internal/constants"
)

// HTTPStatus maps a Kind to the status the bridge answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case "":
		return http.StatusOK
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCommand:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCanceled:
		return http.StatusRequestTimeout
	case KindDial:
		return http.StatusServiceUnavailable
	case KindWrite, KindRead, KindProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps a Kind to the CLI process exit status.
func ExitCode(kind Kind) int {
	switch kind {
	case "":
		return 0
	case KindCommand:
		return 1
	case KindInvalidArgument, KindConfig:
		return 2
	case KindDial:
		return 3
	case KindTimeout, KindCanceled:
		return 4
	case KindWrite, KindRead, KindProtocol:
		return 5
	default:
		return 1
	}
}

// Payload is the JSON error envelope returned by the bridge.
type Payload struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Kind    Kind   `json:"kind"`
	Command string `json:"command,omitempty"`
}

// ToPayload renders err for an HTTP response body.
func ToPayload(err error) Payload {
	p := Payload{Status: "error", Kind: KindOf(err)}
	if err != nil {
		p.Error = Truncate(err.Error(), constants.MaxErrorMessageLength)
	}
	var e *Error
	if stderrors.As(err, &e) {
		p.Command = e.Command
	}
	return p
}
