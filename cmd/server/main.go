package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campusinterview/internal/app"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting interview server",
		"store", cfg.Store,
		"topics", cfg.TopicSource,
		"total_questions", cfg.Interview.TotalQuestions,
		"ai_enabled", cfg.AI.IsEnabled(),
		"followup_model", cfg.AI.FollowupModel,
	)

	// Wait for interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build app", "error", err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		log.Error("server stopped", "error", err)
	}
}
