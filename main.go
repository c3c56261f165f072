// main holds the entry logic for the lochist CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/lochist/cmd"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer iocache.CloseStore()

	if err := cmd.Execute(ctx); err != nil {
		iocache.CloseStore()
		contract.LogFatal("Command failed", err)
	}
}
