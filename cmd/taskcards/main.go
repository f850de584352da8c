// Command taskcards generates printable worksheets of bordered task cards.
//
//	taskcards generate -n 3 PerfectSquaresTask RationalToDecimalTask
//	taskcards generate --category algebra1 --seed 7
//	taskcards tasks
//
// The exit status tells the failure kind apart: 2 configuration, 3 unknown
// task, 4 missing asset, 5 typesetting or rasterization, 6 upload, 1 other.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/taskcards/taskerr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(taskerr.KindOf(err).ExitCode())
	}
}
