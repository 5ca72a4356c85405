package server

import (
	"net/http"
	"time"

	"unreal-mcp-go/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	streamPongWait   = 90 * time.Second
	streamPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// non-browser clients send no Origin
		origin := r.Header.Get("Origin")
		return origin == "" || sameHost(origin, r.Host)
	},
}

// streamRuns upgrades to a websocket and relays run events until the client
// disconnects.
func (h *handler) streamRuns(c *gin.Context) {
	stream := h.deps.Stream
	if stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "run stream is disabled"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	if err := stream.AddClient(conn); err != nil {
		if err == logging.ErrMaxConnectionsReached {
			_ = conn.WriteJSON(map[string]string{"error": "Maximum connections reached"})
		}
		conn.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	close(done)
	stream.RemoveClient(conn)
	log.Debug("run stream client closed")
}
