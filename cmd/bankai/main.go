package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/bankai-project/bankai/pkg/config"
)

func main() {
	month := flag.String("month", "", `month folder to process ("2025-01", "latest", empty for all)`)
	noLLM := flag.Bool("no-llm", false, "skip language-model cleaning even when the service is reachable")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *noLLM {
		cfg.LLM.Enabled = false
	}

	if err := run(context.Background(), cfg, *month, logger); err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}
}
