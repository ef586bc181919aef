package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/config"
	"github.com/okian/pirouette/pkg/logger"
)

func main() {
	eventID := flag.Int64("event", 0, "Event whose duplicate entries are merged")
	flag.Parse()

	if *eventID <= 0 {
		os.Stderr.WriteString("usage: merge-entries -event <id>\n")
		os.Exit(2)
	}
	if err := run(*eventID); err != nil {
		os.Stderr.WriteString("merge failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(eventID int64) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("merge")

	svc, err := service.FromConfig(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(context.Background()) }()

	n, err := svc.MergeDuplicates(ctx, eventID)
	if err != nil {
		return err
	}
	log.Info(ctx, "duplicate entries merged", logger.Int64("event", eventID), logger.Int("removed", n))
	return nil
}
