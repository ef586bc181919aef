package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/config"
	"github.com/okian/pirouette/internal/seed"
	"github.com/okian/pirouette/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		eventID    = flag.Int64("event", 0, "Event to fill (0 creates a new one)")
		name       = flag.String("name", seed.DefaultEventName, "Name of a created event")
		styles     = flag.String("styles", "", "Comma-separated styles for a created event")
		performers = flag.Int("performers", seed.DefaultPerformers, "Performers in the seeded organization")
		entries    = flag.Int("entries", seed.DefaultEntries, "Entries to register")
		judges     = flag.Int("judges", seed.DefaultJudges, "Judges who mark every entry")
		workers    = flag.Int("workers", runtime.NumCPU(), "Concurrent registrations and judges")
		publish    = flag.Bool("publish", false, "Publish the start list and results")
		timeout    = flag.Duration("timeout", defaultRunTimeout, "Overall run timeout")
		verbose    = flag.Bool("verbose", false, "Log every entry and award")
	)
	flag.Parse()

	if err := run(*timeout, *verbose, &seed.Config{
		EventID:    *eventID,
		EventName:  *name,
		Styles:     splitList(*styles),
		Performers: *performers,
		Entries:    *entries,
		Judges:     *judges,
		Workers:    *workers,
		Publish:    *publish,
		Verbose:    *verbose,
	}); err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(timeout time.Duration, verbose bool, sc *seed.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		return err
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Named("seed")

	svc, err := service.FromConfig(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(context.Background()) }()

	res, err := seed.Run(ctx, svc, sc, log)
	if err != nil {
		return err
	}
	log.Info(ctx, "event seeded",
		logger.Int64("event", res.EventID),
		logger.Int64("organization", res.OrganizationID))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
