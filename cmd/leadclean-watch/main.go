package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadclean/internal/config"
	"leadclean/internal/logger"
	"leadclean/internal/lookup"
	"leadclean/internal/pipeline"
	"leadclean/internal/watch"
)

func main() {
	cfg, err := config.Load()
	must(err)

	log, err := logger.New(cfg.LogLevel)
	must(err)
	defer func() { _ = log.Sync() }()

	processor := pipeline.NewProcessor(cfg, lookup.Load(cfg.LookupPath, log), log)
	svc := watch.NewService(cfg, processor, log)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
