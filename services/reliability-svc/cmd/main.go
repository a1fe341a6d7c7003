package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"netreliability/pkg/apperror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(apperror.ExitCode(err))
}
