package upstream

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/protocol"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// stubServer answers every connection with reply(command) and records what
// it received.
type stubServer struct {
	ln       net.Listener
	received chan protocol.Command
	conns    atomic.Int32
}

func newStubServer(t *testing.T, reply func(protocol.Command, net.Conn)) *stubServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &stubServer{ln: ln, received: make(chan protocol.Command, 16)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.conns.Add(1)
			go func(conn net.Conn) {
				defer conn.Close()
				cmd, err := protocol.ReadCommand(conn, 4096, 0)
				if err != nil {
					return
				}
				s.received <- cmd
				reply(cmd, conn)
			}(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *stubServer) options() Options {
	host, portStr, _ := net.SplitHostPort(s.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	opts := DefaultOptions()
	opts.Host = host
	opts.Port = port
	return opts
}

func writeReply(conn net.Conn, raw string) {
	_, _ = io.WriteString(conn, raw)
}

func TestCallSuccess(t *testing.T) {
	srv := newStubServer(t, func(cmd protocol.Command, conn net.Conn) {
		writeReply(conn, `{"status":"success","result":{"name":"`+cmd.Params["name"].(string)+`"}}`)
	})
	client := New(srv.options())

	resp, err := client.Call(context.Background(), "create_blueprint", map[string]any{"name": "BP_A", "parent_class": "Actor"})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "BP_A", resp.String("name"))

	got := <-srv.received
	require.Equal(t, "create_blueprint", got.Type)
	require.Equal(t, "Actor", got.Params["parent_class"])
}

func TestOneConnectionPerCommand(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		writeReply(conn, `{"status":"success","result":{}}`)
	})
	client := New(srv.options())
	for i := 0; i < 3; i++ {
		_, err := client.Call(context.Background(), "compile_blueprint", map[string]any{"blueprint_name": "BP"})
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), srv.conns.Load())
}

func TestCallReplyAcrossChunks(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		parts := []string{`{"status":"succ`, `ess","result":{"node_id":"ABC`, `"}}`}
		for _, p := range parts {
			writeReply(conn, p)
			time.Sleep(10 * time.Millisecond)
		}
	})
	opts := srv.options()
	opts.ChunkSize = 8
	resp, err := New(opts).Call(context.Background(), "add_blueprint_event_node", nil)
	require.NoError(t, err)
	require.Equal(t, "ABC", resp.String("node_id"))
}

func TestCallErrorStatus(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		writeReply(conn, `{"status":"error","error":"Blueprint not found: Missing"}`)
	})
	resp, err := New(srv.options()).Call(context.Background(), "compile_blueprint", map[string]any{"blueprint_name": "Missing"})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, apperrors.KindCommand, apperrors.KindOf(err))
	require.Contains(t, err.Error(), "Blueprint not found: Missing")
}

func TestSendMalformedReply(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		writeReply(conn, `{"status":"success",`)
	})
	_, err := New(srv.options()).Send(context.Background(), protocol.NewCommand("compile_blueprint", nil))
	require.Error(t, err)
	require.Equal(t, apperrors.KindProtocol, apperrors.KindOf(err))
}

func TestSendNonObjectReply(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		writeReply(conn, `[1,2,3]`)
	})
	_, err := New(srv.options()).Send(context.Background(), protocol.NewCommand("compile_blueprint", nil))
	require.Equal(t, apperrors.KindProtocol, apperrors.KindOf(err))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "compile_blueprint", appErr.Command)
}

func TestSendEmptyReply(t *testing.T) {
	srv := newStubServer(t, func(protocol.Command, net.Conn) {})
	_, err := New(srv.options()).Send(context.Background(), protocol.NewCommand("compile_blueprint", nil))
	require.ErrorIs(t, err, protocol.ErrEmptyResponse)
	require.Equal(t, apperrors.KindProtocol, apperrors.KindOf(err))
}

func closedPortOptions(t *testing.T) Options {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())
	opts := DefaultOptions()
	opts.Host = "127.0.0.1"
	opts.Port = addr.Port
	return opts
}

func TestDialRefused(t *testing.T) {
	client := New(closedPortOptions(t))
	_, err := client.Call(context.Background(), "create_blueprint", map[string]any{"name": "X"})
	require.Error(t, err)
	require.Equal(t, apperrors.KindDial, apperrors.KindOf(err))
	require.Error(t, client.Ping(context.Background()))
}

type countingDialer struct {
	calls atomic.Int32
	inner net.Dialer
}

func (d *countingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls.Add(1)
	return d.inner.DialContext(ctx, network, address)
}

func TestDialRetries(t *testing.T) {
	opts := closedPortOptions(t)
	dialer := &countingDialer{}
	opts.Dialer = dialer
	opts.Retries = 2
	opts.RetryDelay = time.Millisecond

	_, err := New(opts).Send(context.Background(), protocol.NewCommand("compile_blueprint", nil))
	require.Equal(t, apperrors.KindDial, apperrors.KindOf(err))
	require.Equal(t, int32(3), dialer.calls.Load())
}

func TestReadTimeoutNotRetried(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		time.Sleep(300 * time.Millisecond)
	})
	opts := srv.options()
	opts.IOTimeout = 50 * time.Millisecond
	opts.Retries = 3
	opts.RetryDelay = time.Millisecond

	_, err := New(opts).Send(context.Background(), protocol.NewCommand("compile_blueprint", nil))
	require.Equal(t, apperrors.KindTimeout, apperrors.KindOf(err))
	require.Equal(t, int32(1), srv.conns.Load())
}

func TestContextCancelAbortsRead(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		time.Sleep(500 * time.Millisecond)
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := New(srv.options()).Send(ctx, protocol.NewCommand("compile_blueprint", nil))
	require.Equal(t, apperrors.KindCanceled, apperrors.KindOf(err))
	require.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestSetAddress(t *testing.T) {
	srv := newStubServer(t, func(_ protocol.Command, conn net.Conn) {
		writeReply(conn, `{"success":true,"node_id":"N1"}`)
	})
	client := New(closedPortOptions(t))
	opts := srv.options()
	client.SetAddress(opts.Host, opts.Port)
	require.Equal(t, srv.ln.Addr().String(), client.Address())

	resp, err := client.Call(context.Background(), "add_blueprint_self_reference", map[string]any{"blueprint_name": "BP"})
	require.NoError(t, err)
	require.Equal(t, "N1", gjson.GetBytes(resp.ResultJSON(), "node_id").String())
}

func TestOptionsFromConfigAndBackoff(t *testing.T) {
	opts := DefaultOptions()
	require.Equal(t, "127.0.0.1:55557", opts.address())
	require.Equal(t, 10*time.Millisecond, backoff(10*time.Millisecond, 0))
	require.Equal(t, 40*time.Millisecond, backoff(10*time.Millisecond, 2))
	require.Equal(t, 10*time.Second, backoff(time.Second, 10))
}
