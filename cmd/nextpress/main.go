// Command nextpress rewrites content for better audience engagement using a
// language model.
//
//	nextpress optimize --content "Check out our new product launch!" --audience "Tech enthusiasts"
//	nextpress batch drafts.jsonl --concurrency 8
//	nextpress prompt --content "..."     # render the prompt, no model call
//	nextpress serve --addr :8080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}
