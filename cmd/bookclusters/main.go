// Package main provides the entry point for the book clustering pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclusters/internal/di"
	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	injector := di.NewContainer(args)

	runner, err := di.Bootstrap(injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start pipeline: %v\n", err)
		return errors.CodeOf(err).ExitCode()
	}
	log := do.MustInvoke[*logger.Logger](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := runner.Run(ctx)
	for _, failure := range result.Failed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", failure)
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	return result.ExitCode()
}
