// Package upstream is the client side of the editor's TCP command socket.
// Every command opens a fresh connection, writes one JSON object, reads one
// JSON reply and closes.
package upstream

import (
	"context"
	stderrors "errors"
	"net"
	"sync"
	"time"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/logging"
	"unreal-mcp-go/internal/monitoring"
	"unreal-mcp-go/internal/monitoring/tracing"
	"unreal-mcp-go/internal/protocol"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Client sends commands to the editor. It is safe for concurrent use; each
// call owns its own connection.
type Client struct {
	mu      sync.RWMutex
	opts    Options
	limiter *rate.Limiter
}

// New builds a client from opts, filling unset fields with defaults.
func New(opts Options) *Client {
	opts = opts.normalized()
	c := &Client{opts: opts}
	if opts.CommandsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.CommandsPerSecond), 1)
	}
	return c
}

// Address returns the current host:port target.
func (c *Client) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.address()
}

// SetAddress retargets subsequent commands; in-flight commands are unaffected.
func (c *Client) SetAddress(host string, port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if host != "" {
		c.opts.Host = host
	}
	if port > 0 {
		c.opts.Port = port
	}
}

func (c *Client) options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// Call sends a command and turns a non-success reply into a KindCommand
// error. The decoded response is returned in both cases.
func (c *Client) Call(ctx context.Context, commandType string, params map[string]any) (*protocol.Response, error) {
	resp, err := c.Send(ctx, protocol.NewCommand(commandType, params))
	if err != nil {
		return resp, err
	}
	if !resp.OK() {
		return resp, apperrors.New(apperrors.KindCommand, "call", commandType, resp.Message())
	}
	return resp, nil
}

// Send performs one command exchange. Only dial failures are retried, so a
// command is never written twice.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) (*protocol.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := cmd.Encode()
	if err != nil {
		return nil, err
	}
	opts := c.options()
	addr := opts.address()

	ctx, span := tracing.StartSpan(ctx, "upstream", "unreal.command")
	span.SetAttributes(
		attribute.String("unreal.command", cmd.Type),
		attribute.String("net.peer.addr", addr),
	)

	start := time.Now()
	resp, attempts, err := c.send(ctx, opts, cmd.Type, payload)
	duration := time.Since(start)

	outcome := "ok"
	status := ""
	if err != nil {
		outcome = logging.ErrorKind(err)
	} else {
		status = resp.Status
		if !resp.OK() {
			outcome = string(apperrors.KindCommand)
		}
	}
	rawLen := 0
	if resp != nil {
		rawLen = len(resp.Raw)
	}
	monitoring.RecordCommand(cmd.Type, outcome, duration, rawLen)
	span.SetAttributes(attribute.Int("unreal.attempts", attempts), attribute.String("unreal.status", status))
	tracing.EndSpan(span, err)

	entry := logging.WithCommand(cmd.Type, addr, log.Fields{
		"duration_ms": logging.DurationMS(duration),
		"status":      status,
		"attempts":    attempts,
	})
	if err != nil {
		entry.WithError(err).WithField("error_kind", outcome).Warn("unreal command failed")
	} else {
		entry.Debug("unreal command completed")
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, opts Options, command string, payload []byte) (*protocol.Response, int, error) {
	attempts := 0
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, attempts, apperrors.MapNetworkError("dial", command, err)
			}
		}
		attempts++
		conn, err := c.dial(ctx, opts, command)
		if err != nil {
			if attempts > opts.Retries || !apperrors.Retryable(apperrors.KindOf(err)) {
				return nil, attempts, err
			}
			monitoring.CommandRetryAttempts.WithLabelValues(command).Inc()
			delay := backoff(opts.RetryDelay, attempts-1)
			log.WithFields(log.Fields{
				"command": command,
				"attempt": attempts,
				"delay":   delay.String(),
			}).Debug("retrying unreal dial")
			if serr := sleepContext(ctx, delay); serr != nil {
				return nil, attempts, apperrors.MapNetworkError("dial", command, serr)
			}
			continue
		}
		resp, err := exchange(ctx, conn, opts, command, payload)
		return resp, attempts, err
	}
}

func (c *Client) dial(ctx context.Context, opts Options, command string) (net.Conn, error) {
	dctx := ctx
	if opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
	}
	conn, err := opts.Dialer.DialContext(dctx, "tcp", opts.address())
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		// A dial that timed out is still a reachability failure.
		mapped := apperrors.MapNetworkError("dial", command, err)
		if mapped.Kind == apperrors.KindTimeout && ctx.Err() == nil {
			mapped.Kind = apperrors.KindDial
		}
		return nil, mapped
	}
	return conn, nil
}

// exchange writes payload on conn, reads one reply and closes conn.
func exchange(ctx context.Context, conn net.Conn, opts Options, command string, payload []byte) (*protocol.Response, error) {
	defer conn.Close()

	deadline := time.Time{}
	if opts.IOTimeout > 0 {
		deadline = time.Now().Add(opts.IOTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write(payload); err != nil {
		return nil, ioError(ctx, "write", command, err)
	}

	resp, err := protocol.ReadResponse(conn, opts.ChunkSize, opts.MaxResponseBytes)
	if err != nil {
		if protocol.IsFramingError(err) {
			return nil, apperrors.Wrap(apperrors.KindProtocol, "read", command, err)
		}
		var appErr *apperrors.Error
		if stderrors.As(err, &appErr) {
			if appErr.Command == "" {
				appErr.Command = command
			}
			return nil, appErr
		}
		return nil, ioError(ctx, "read", command, err)
	}
	return resp, nil
}

func ioError(ctx context.Context, op, command string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.MapNetworkError(op, command, ctxErr)
	}
	return apperrors.MapNetworkError(op, command, err)
}

// Ping probes reachability by dialing and closing without sending a command.
func (c *Client) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := c.dial(ctx, c.options(), "ping")
	if err != nil {
		return err
	}
	return conn.Close()
}
