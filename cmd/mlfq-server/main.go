package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/logging"
	"github.com/me/mlfq/internal/server"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (default ~/.mlfq/mlfq.db)")
	flag.IntVar(&cfg.Limits.MaxLevels, "max-levels", cfg.Limits.MaxLevels, "Maximum number of priority levels per workload")
	flag.IntVar(&cfg.Limits.MaxProcesses, "max-processes", cfg.Limits.MaxProcesses, "Maximum number of processes per workload")
	flag.IntVar(&cfg.Limits.MaxNameLength, "max-name-length", cfg.Limits.MaxNameLength, "Maximum process name length")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "mlfq-server: %v\n", err)
		os.Exit(1)
	}
}
