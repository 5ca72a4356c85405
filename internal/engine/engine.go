// Package engine is an in-process stand-in for the Unreal editor's command
// socket. It keeps blueprint and actor state in memory and answers the same
// commands, with the same error messages, as the editor plugin.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"unreal-mcp-go/internal/constants"
	"unreal-mcp-go/internal/protocol"

	log "github.com/sirupsen/logrus"
)

// HandlerFunc executes one command against the engine state. The returned
// value becomes the reply's result; an error becomes its error message.
type HandlerFunc func(ctx context.Context, params Params) (any, error)

// Options tunes the listener.
type Options struct {
	ChunkSize       int
	MaxRequestBytes int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	// Latency delays every reply, for exercising client timeouts.
	Latency time.Duration
}

// DefaultOptions mirrors the client-side framing defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:       constants.RecvChunkSize,
		MaxRequestBytes: constants.MaxResponseBytes,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// Engine serves one command per connection.
type Engine struct {
	opts Options

	mu       sync.Mutex
	state    *state
	handlers map[string]HandlerFunc
	received []string

	lnMu     sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	active   sync.WaitGroup
}

// New creates an engine with every plugin command registered.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.MaxRequestBytes <= 0 {
		opts.MaxRequestBytes = def.MaxRequestBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	e := &Engine{
		opts:     opts,
		state:    newState(),
		handlers: make(map[string]HandlerFunc),
	}
	e.registerEditorHandlers()
	e.registerGraphHandlers()
	return e
}

// Handle registers or replaces the handler for command.
func (e *Engine) Handle(command string, h HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[command] = h
}

// Commands lists the registered command names.
func (e *Engine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Start listens on addr and serves in the background until Close. It
// returns the bound address, which differs from addr when the port is 0.
func (e *Engine) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listening on %s: %w", addr, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.lnMu.Lock()
	e.cancel = cancel
	e.done = done
	e.lnMu.Unlock()

	go func() {
		defer close(done)
		if err := e.Serve(ctx, ln); err != nil {
			log.WithError(err).Error("engine stopped")
		}
	}()
	return ln.Addr().String(), nil
}

// ListenAndServe listens on addr and blocks until ctx is cancelled.
func (e *Engine) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return e.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for
// in-flight commands to finish.
func (e *Engine) Serve(ctx context.Context, ln net.Listener) error {
	e.lnMu.Lock()
	e.listener = ln
	e.lnMu.Unlock()
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	log.WithField("addr", ln.Addr().String()).Info("engine listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			log.WithError(err).Warn("engine accept failed")
			continue
		}
		e.active.Add(1)
		go func() {
			defer e.active.Done()
			e.handleConnection(ctx, conn)
		}()
	}
	e.active.Wait()
	return nil
}

// Addr returns the listening address, or "" before Serve.
func (e *Engine) Addr() string {
	e.lnMu.Lock()
	defer e.lnMu.Unlock()
	if e.listener == nil {
		return ""
	}
	return e.listener.Addr().String()
}

// Close stops a server started with Start and waits for it to drain.
func (e *Engine) Close() error {
	e.lnMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.lnMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Reset drops all blueprints, actors and the command log.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = newState()
	e.received = nil
}

func (e *Engine) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(e.opts.ReadTimeout))
	// shutdown unblocks a pending read or write
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	cmd, err := protocol.ReadCommand(conn, e.opts.ChunkSize, e.opts.MaxRequestBytes)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, protocol.ErrEmptyResponse) {
			// reachability probe
			return
		}
		e.writeError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	entry := log.WithFields(log.Fields{"component": "engine", "command": cmd.Type})
	result, err := e.dispatch(ctx, cmd)
	if e.opts.Latency > 0 {
		select {
		case <-time.After(e.opts.Latency):
		case <-ctx.Done():
			return
		}
	}
	if err != nil {
		entry.WithError(err).Debug("command failed")
		e.writeError(conn, err.Error())
		return
	}
	entry.Debug("command handled")
	e.writeSuccess(conn, result)
}

func (e *Engine) dispatch(ctx context.Context, cmd protocol.Command) (any, error) {
	e.mu.Lock()
	e.received = append(e.received, cmd.Type)
	h, ok := e.handlers[cmd.Type]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("Unknown command: %s", cmd.Type)
	}
	return h(ctx, Params(cmd.Params))
}

func (e *Engine) writeSuccess(conn net.Conn, result any) {
	raw, err := protocol.EncodeSuccess(result)
	if err != nil {
		e.writeError(conn, fmt.Sprintf("Failed to encode result: %v", err))
		return
	}
	e.write(conn, raw)
}

func (e *Engine) writeError(conn net.Conn, message string) {
	raw, err := protocol.EncodeError(message)
	if err != nil {
		return
	}
	e.write(conn, raw)
}

func (e *Engine) write(conn net.Conn, raw []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(e.opts.WriteTimeout))
	if _, err := conn.Write(raw); err != nil {
		log.WithError(err).Debug("engine write failed")
	}
}

// withState runs fn under the engine lock.
func (e *Engine) withState(fn func(s *state) (any, error)) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}
