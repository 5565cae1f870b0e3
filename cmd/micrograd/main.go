// Micrograd evaluates and differentiates scalar graph files.
//
// Usage:
//
//	micrograd [--json] [--log-level LEVEL] <command> FILE [flags]
//
// Commands:
//
//	grad     Print data and gradient of every named node
//	dot      Print the graph in Graphviz DOT format
//	check    Compare gradients with finite differences
//	version  Show version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/micrograd/internal/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
