package upstream

import (
	"context"
	"net"
	"strconv"
	"time"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/constants"
)

// Dialer opens the per-command connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Client.
type Options struct {
	Host              string
	Port              int
	DialTimeout       time.Duration
	IOTimeout         time.Duration
	ChunkSize         int
	MaxResponseBytes  int
	Retries           int
	RetryDelay        time.Duration
	CommandsPerSecond float64
	Dialer            Dialer
}

// DefaultOptions targets the editor plugin's default socket.
func DefaultOptions() Options {
	return Options{
		Host:             constants.DefaultUnrealHost,
		Port:             constants.DefaultUnrealPort,
		DialTimeout:      constants.DefaultDialTimeout,
		IOTimeout:        constants.DefaultIOTimeout,
		ChunkSize:        constants.RecvChunkSize,
		MaxResponseBytes: constants.MaxResponseBytes,
		Retries:          constants.DefaultMaxRetries,
		RetryDelay:       constants.DefaultRetryDelay,
	}
}

// OptionsFromConfig maps the unreal config section onto client options.
func OptionsFromConfig(cfg config.UnrealConfig) Options {
	opts := DefaultOptions()
	if cfg.Host != "" {
		opts.Host = cfg.Host
	}
	if cfg.Port > 0 {
		opts.Port = cfg.Port
	}
	if d := cfg.DialTimeout(); d > 0 {
		opts.DialTimeout = d
	}
	opts.IOTimeout = cfg.IOTimeout()
	if cfg.RecvChunkSize > 0 {
		opts.ChunkSize = cfg.RecvChunkSize
	}
	if cfg.MaxResponseBytes > 0 {
		opts.MaxResponseBytes = cfg.MaxResponseBytes
	}
	opts.Retries = cfg.Retries
	if d := cfg.RetryDelay(); d > 0 {
		opts.RetryDelay = d
	}
	opts.CommandsPerSecond = cfg.CommandsPerSecond
	return opts
}

func (o Options) address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Host == "" {
		o.Host = def.Host
	}
	if o.Port <= 0 {
		o.Port = def.Port
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = def.DialTimeout
	}
	if o.IOTimeout < 0 {
		o.IOTimeout = 0
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = def.ChunkSize
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = def.RetryDelay
	}
	if o.Dialer == nil {
		o.Dialer = &net.Dialer{Timeout: o.DialTimeout}
	}
	return o
}
