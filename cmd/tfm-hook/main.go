package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/command"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/config"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/lock"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/log"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/refresh"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/webhook"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		os.Exit(runStart(os.Args[2:]))
	case "version":
		fmt.Printf("tfm-hook version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`tfm-hook - Webhook-triggered deployment refresh agent

One authenticated HTTP call pulls the configured git checkouts and
restarts the configured Docker services.

Usage:
  tfm-hook <command> [flags]

Commands:
  start     Start the webhook server in foreground
  version   Show version information
  help      Show this help message

Start flags:
  --config  Path to configuration file (default "config.yaml")
`)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")

	fingerprint, err := config.Fingerprint(*configPath)
	if err != nil {
		logger.Warn("failed to fingerprint config", "error", err)
	}

	if cfg.Service.LockPath != "" {
		pidLock, err := lock.Acquire(cfg.Service.LockPath)
		if err != nil {
			logger.Error("failed to acquire instance lock", "path", cfg.Service.LockPath, "error", err)
			return 1
		}
		defer func() { _ = pidLock.Release() }()
		logger.Info("instance lock acquired", "path", pidLock.Path())
	}

	logger.Info("starting tfm-hook",
		"version", version,
		"config", *configPath,
		"config_fingerprint", fingerprint,
		"repositories", len(cfg.Repositories),
		"services", len(cfg.Services),
	)

	if !cfg.HasSecret() {
		logger.Warn("no webhook secret configured; signature verification is DISABLED for all requests")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := command.NewExecRunner(cfg.Service.CommandTimeout, log.WithComponent("command"))
	verifier := webhook.NewHMACVerifier(cfg.Webhook.Secret)
	orchestrator := refresh.New(cfg, verifier, runner)
	server := webhook.New(cfg, orchestrator, log.WithComponent("webhook"), version, fingerprint)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server failed", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}
