// Command unrealmcp drives an Unreal editor's MCP command socket: smoke
// tests, raw commands, run history, an offline fake editor and an MCP stdio
// server.
package main

import (
	"fmt"
	"os"

	apperrors "unreal-mcp-go/internal/errors"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "unrealmcp:", err)
		os.Exit(apperrors.ExitCode(apperrors.KindOf(err)))
	}
}
