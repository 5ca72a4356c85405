package main

import (
	"context"
	"net"
	"strconv"
	"testing"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/events"
	"unreal-mcp-go/internal/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBuildRuntimeWithFileStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Storage.BaseDir = t.TempDir()

	rt, err := buildRuntime(context.Background(), config.NewStaticManager(cfg), events.NewHub())
	if err != nil {
		t.Fatalf("buildRuntime: %v", err)
	}
	defer rt.Close()
	if rt.deps.Storage == nil {
		t.Fatalf("expected a storage backend")
	}
	if rt.deps.StorageLabel != "file" {
		t.Fatalf("label = %q, want file", rt.deps.StorageLabel)
	}
	if rt.deps.Client.Address() != cfg.Unreal.Address() {
		t.Fatalf("client address = %q, want %q", rt.deps.Client.Address(), cfg.Unreal.Address())
	}
}

func TestBuildRuntimeWithoutStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "none"

	rt, err := buildRuntime(context.Background(), config.NewStaticManager(cfg), events.NewHub())
	if err != nil {
		t.Fatalf("buildRuntime: %v", err)
	}
	defer rt.Close()
	if rt.deps.Storage != nil {
		t.Fatalf("expected no storage for backend none")
	}
}

func TestProbeUnrealTracksReachability(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	cfg := config.Default()
	cfg.Storage.Backend = "none"
	cfg.Unreal.Host, cfg.Unreal.Port, cfg.Unreal.Retries = host, port, 0
	rt, err := buildRuntime(context.Background(), config.NewStaticManager(cfg), events.NewHub())
	if err != nil {
		t.Fatalf("buildRuntime: %v", err)
	}
	defer rt.Close()

	if err := rt.probeUnreal(context.Background()); err != nil {
		t.Fatalf("probe with listener: %v", err)
	}
	if got := testutil.ToFloat64(monitoring.UnrealReachable); got != 1 {
		t.Fatalf("gauge = %v, want 1", got)
	}

	_ = ln.Close()
	if err := rt.probeUnreal(context.Background()); err == nil {
		t.Fatalf("expected probe failure after listener closed")
	}
	if got := testutil.ToFloat64(monitoring.UnrealReachable); got != 0 {
		t.Fatalf("gauge = %v, want 0", got)
	}
}
