// Package main is the entry point for the livetask CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"livetask/internal/backend"
	"livetask/internal/cli"
	"livetask/internal/commands"
	"livetask/internal/config"
	"livetask/internal/logging"
	"livetask/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
		logger := logging.New(os.Stderr, logging.Options{Debug: cfg.Debug})
		return backend.Open(ctx, cfg, logger)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
