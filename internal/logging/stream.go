package logging

import (
	"context"
	"errors"
	"sync"
	"time"

	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/events"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// ErrMaxConnectionsReached is returned by AddClient when the stream is full.
var ErrMaxConnectionsReached = errors.New("maximum WebSocket connections reached")

// StreamMessage is one run event as delivered to websocket clients.
type StreamMessage struct {
	ID        uint64            `json:"id"`
	Topic     string            `json:"topic"`
	Timestamp string            `json:"timestamp"`
	Payload   any               `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type streamClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// RunStream fans run events out to connected websocket clients and keeps a
// bounded history for late joiners.
type RunStream struct {
	mu             sync.RWMutex
	clients        map[*websocket.Conn]*streamClient
	maxConnections int

	// historyMu orders sequence numbers, history and client snapshots, so
	// each message reaches a client exactly once and in ID order.
	historyMu  sync.RWMutex
	history    []StreamMessage
	historyCap int
	seq        uint64
}

// NewRunStream creates an empty stream.
func NewRunStream() *RunStream {
	return &RunStream{
		clients:        make(map[*websocket.Conn]*streamClient),
		maxConnections: constants.DefaultStreamClients,
		historyCap:     500,
	}
}

// Attach subscribes the stream to every run topic on sub.
func (s *RunStream) Attach(sub events.Subscriber) func() {
	cancels := make([]func(), 0, len(events.RunTopics))
	for _, topic := range events.RunTopics {
		cancels = append(cancels, sub.Subscribe(topic, s.handle))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (s *RunStream) handle(_ context.Context, ev events.Event) {
	s.Broadcast(ev)
}

// Broadcast records ev and writes it to every client. Clients whose write
// fails are dropped.
func (s *RunStream) Broadcast(ev events.Event) {
	s.historyMu.Lock()
	s.seq++
	msg := StreamMessage{
		ID:        s.seq,
		Topic:     ev.Topic,
		Timestamp: ev.Timestamp.Format(time.RFC3339Nano),
		Payload:   ev.Payload,
		Metadata:  ev.Metadata,
	}
	s.appendHistoryLocked(msg)

	s.mu.RLock()
	clients := make([]*streamClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()
	s.historyMu.Unlock()

	for _, c := range clients {
		if err := c.write(msg); err != nil {
			log.WithError(err).Debug("run stream client write failed")
			s.RemoveClient(c.conn)
		}
	}
}

func (c *streamClient) write(msg StreamMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(msg)
}

func (c *streamClient) writeLocked(msg StreamMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
	return c.conn.WriteJSON(msg)
}

// AddClient registers conn and replays the recent history to it. Live
// messages wait until the replay is written.
func (s *RunStream) AddClient(conn *websocket.Conn) error {
	client := &streamClient{conn: conn}
	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	s.historyMu.RLock()
	backlog := append([]StreamMessage(nil), s.history...)
	s.mu.Lock()
	if len(s.clients) >= s.maxConnections {
		limit := s.maxConnections
		s.mu.Unlock()
		s.historyMu.RUnlock()
		log.Warnf("run stream connection limit reached (%d), rejecting new connection", limit)
		return ErrMaxConnectionsReached
	}
	s.clients[conn] = client
	total := len(s.clients)
	s.mu.Unlock()
	s.historyMu.RUnlock()
	log.WithField("clients", total).Info("run stream client connected")

	for _, msg := range backlog {
		if err := client.writeLocked(msg); err != nil {
			s.RemoveClient(conn)
			return err
		}
	}
	return nil
}

// RemoveClient removes a WebSocket client
func (s *RunStream) RemoveClient(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		conn.Close()
		log.WithField("clients", len(s.clients)).Info("run stream client disconnected")
	}
}

// ConnectionCount returns the current number of connected clients
func (s *RunStream) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// SetMaxConnections sets the maximum number of concurrent connections.
// Existing clients are kept when the limit drops below the current count.
func (s *RunStream) SetMaxConnections(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxConnections = max
}

// MaxConnections returns the current connection limit.
func (s *RunStream) MaxConnections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxConnections
}

// Close disconnects every client.
func (s *RunStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*streamClient)
}

func (s *RunStream) appendHistoryLocked(msg StreamMessage) {
	if s.historyCap <= 0 {
		return
	}
	s.history = append(s.history, msg)
	if len(s.history) > s.historyCap {
		excess := len(s.history) - s.historyCap
		s.history = append([]StreamMessage(nil), s.history[excess:]...)
	}
}

// FetchSince returns messages newer than cursor, the next cursor, and
// whether more remain.
func (s *RunStream) FetchSince(cursor uint64, limit int) ([]StreamMessage, uint64, bool) {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > s.historyCap {
		limit = s.historyCap
	}
	total := len(s.history)
	if total == 0 {
		return []StreamMessage{}, cursor, false
	}

	start := total
	for i, msg := range s.history {
		if msg.ID > cursor {
			start = i
			break
		}
	}
	if start >= total {
		return []StreamMessage{}, cursor, false
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]StreamMessage, end-start)
	copy(out, s.history[start:end])
	return out, out[len(out)-1].ID, end < total
}
