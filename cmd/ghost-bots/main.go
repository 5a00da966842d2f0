// Command ghost-bots plays Flappy Ghost headlessly against a ghost store and
// watches its live death feed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rf := newRootCmd()
	cmd.SetOut(os.Stdout)
	err := cmd.ExecuteContext(ctx)
	_ = rf.close()
	if err != nil {
		stop()
		cobra.CheckErr(err)
	}
}
