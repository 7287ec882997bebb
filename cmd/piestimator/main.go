// Package main is the entry point for the π estimator CLI and service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
)

func main() {
	// Root context canceled on SIGTERM/SIGINT (12-factor: disposability)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	code := 0
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		out := termenv.NewOutput(os.Stderr)
		fmt.Fprintln(os.Stderr, out.String("error:").Foreground(out.Color("1")).Bold(), err)
		code = 1
	}

	os.Exit(code)
}
