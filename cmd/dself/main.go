// Command dself extracts personal activity records from local and remote
// sources and persists them to a remote store or local JSON files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/dself/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(ctx, version); err != nil {
		stop()
		os.Exit(1)
	}
}
