package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sifan077/CharacterVault/config"
	"github.com/sifan077/CharacterVault/internal/infra/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "charactersctl: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.FromEnv(cfg.App.Env, cfg.App.LogLevel, "charactersctl"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "charactersctl: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(cfg.Client, log).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
