package server

import (
	"context"
	"net/http"

	"unreal-mcp-go/internal/constants"

	"github.com/gin-gonic/gin"
)

func (h *handler) health(c *gin.Context) {
	body := gin.H{"status": "ok", "unreal": "unconfigured"}
	if h.deps.Client != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), constants.HealthProbeTimeout)
		defer cancel()
		body["unreal_addr"] = h.deps.Client.Address()
		if err := h.deps.Client.Ping(ctx); err != nil {
			body["unreal"] = "unreachable"
		} else {
			body["unreal"] = "reachable"
		}
	}
	storageLabel := h.deps.StorageLabel
	if h.deps.Storage == nil {
		storageLabel = "none"
	}
	body["storage"] = storageLabel
	c.JSON(http.StatusOK, body)
}
