package middleware

import (
	"time"

	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/netutil"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		command, _ := c.Get("command")
		runID, _ := c.Get("run_id")
		extras := log.Fields{
			"status":     status,
			"latency_ms": logging.DurationMS(latency),
			"user_agent": c.Request.UserAgent(),
			"source":     netutil.ClassifyClientSource(netutil.RemoteIP(c.Request)),
		}
		if command != nil {
			extras["command"] = command
		}
		if runID != nil {
			extras["run_id"] = runID
		}
		entry := logging.WithReq(c, extras)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			entry.Error("http_request")
		case status >= 400:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}
