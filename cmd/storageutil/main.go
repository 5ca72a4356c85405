package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"unreal-mcp-go/internal/config"
	"unreal-mcp-go/internal/constants"
	store "unreal-mcp-go/internal/storage"
)

// snapshot is the export file format.
type snapshot struct {
	ExportedAt time.Time          `json:"exported_at"`
	Backend    string             `json:"backend"`
	Runs       []*store.RunRecord `json:"runs"`
}

func main() {
	mode := flag.String("mode", "", "operation mode: export | import | verify")
	filePath := flag.String("file", "", "file path for export/import/verify (default: stdout/stdin)")
	configPath := flag.String("config", "", "path to configuration file")
	timeout := flag.Duration("timeout", 30*time.Second, "operation timeout")
	flag.Parse()

	if *mode == "" {
		fail(fmt.Errorf("missing -mode (export|import|verify)"))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(fmt.Errorf("load configuration: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend, label, err := store.Build(ctx, cfg)
	if err != nil {
		fail(fmt.Errorf("build storage backend: %w", err))
	}
	if backend == nil {
		fail(fmt.Errorf("storage backend is %q; nothing to do", label))
	}
	defer backend.Close()

	switch strings.ToLower(*mode) {
	case "export":
		if err := runExport(ctx, backend, label, *filePath); err != nil {
			fail(err)
		}
	case "import":
		n, err := runImport(ctx, backend, *filePath)
		if err != nil {
			fail(err)
		}
		fmt.Printf("imported %d runs\n", n)
	case "verify":
		matches, err := runVerify(ctx, backend, *filePath)
		if err != nil {
			fail(err)
		}
		if !matches {
			os.Exit(1)
		}
	default:
		fail(fmt.Errorf("unknown mode %q (expected export|import|verify)", *mode))
	}
}

func exportRuns(ctx context.Context, backend store.Backend, label string) (*snapshot, error) {
	summaries, err := backend.ListRuns(ctx, constants.MaxRunListLimit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	snap := &snapshot{ExportedAt: time.Now().UTC(), Backend: label, Runs: make([]*store.RunRecord, 0, len(summaries))}
	for _, s := range summaries {
		run, err := backend.GetRun(ctx, s.ID)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get run %s: %w", s.ID, err)
		}
		snap.Runs = append(snap.Runs, run)
	}
	return snap, nil
}

func runExport(ctx context.Context, backend store.Backend, label, path string) error {
	snap, err := exportRuns(ctx, backend, label)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("open export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("write export json: %w", err)
	}
	return nil
}

func runImport(ctx context.Context, backend store.Backend, path string) (int, error) {
	snap, err := readSnapshot(path)
	if err != nil {
		return 0, fmt.Errorf("read import json: %w", err)
	}
	for _, run := range snap.Runs {
		if err := backend.SaveRun(ctx, run); err != nil {
			return 0, fmt.Errorf("save run %s: %w", run.ID, err)
		}
	}
	return len(snap.Runs), nil
}

func runVerify(ctx context.Context, backend store.Backend, path string) (bool, error) {
	expected, err := readSnapshot(path)
	if err != nil {
		return false, fmt.Errorf("read reference json: %w", err)
	}
	current, err := exportRuns(ctx, backend, "")
	if err != nil {
		return false, err
	}
	if sameRuns(expected.Runs, current.Runs) {
		fmt.Println("storage matches reference snapshot")
		return true, nil
	}
	fmt.Println("storage diverges from reference snapshot")
	return false, nil
}

func readSnapshot(path string) (*snapshot, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// sameRuns compares run ids, statuses and step counts, ignoring order.
func sameRuns(a, b []*store.RunRecord) bool {
	if len(a) != len(b) {
		return false
	}
	key := func(list []*store.RunRecord) []string {
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = fmt.Sprintf("%s|%s|%d", r.ID, r.Status, len(r.Steps))
		}
		sort.Strings(out)
		return out
	}
	ka, kb := key(a), key(b)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "storageutil:", err)
	os.Exit(1)
}
