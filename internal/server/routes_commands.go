package server

import (
	"net/http"
	"strings"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/protocol"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// writeError answers with the error payload and the status for its kind.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(apperrors.KindOf(err)), apperrors.ToPayload(err))
}

// sendCommand forwards one {type, params} document. The editor's reply is
// returned verbatim: 200 for success, 422 for an editor-side error. Transport
// failures map through errors.HTTPStatus.
func (h *handler) sendCommand(c *gin.Context) {
	if h.deps.Client == nil {
		writeError(c, apperrors.New(apperrors.KindDial, "forward", "", "no Unreal client configured"))
		return
	}
	var cmd protocol.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, apperrors.Wrap(apperrors.KindInvalidArgument, "bind", "", err))
		return
	}
	if strings.TrimSpace(cmd.Type) == "" {
		writeError(c, apperrors.New(apperrors.KindInvalidArgument, "bind", "", "command type is required"))
		return
	}
	c.Set("command", cmd.Type)

	resp, err := h.deps.Client.Send(c.Request.Context(), cmd)
	if resp != nil {
		status := http.StatusOK
		if !resp.OK() {
			status = apperrors.HTTPStatus(apperrors.KindCommand)
		}
		c.Data(status, "application/json; charset=utf-8", resp.Raw)
		return
	}
	logging.WithReq(c, log.Fields{"command": cmd.Type, "error_kind": logging.ErrorKind(err)}).
		WithError(err).Warn("command forward failed")
	writeError(c, err)
}
