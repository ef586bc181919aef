package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/pirouette/internal/adapters/diploma"
	"github.com/okian/pirouette/internal/adapters/notify"
	"github.com/okian/pirouette/internal/adapters/playback"
	"github.com/okian/pirouette/internal/adapters/repository"
	"github.com/okian/pirouette/internal/config"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/internal/domain/startlist"
	"github.com/okian/pirouette/pkg/logger"
)

// FromConfig opens every backend cfg names and returns a Service wired to
// them. The service is not started; Stop releases the backends.
func FromConfig(ctx context.Context, cfg *config.Config, l logger.Logger) (*Service, error) {
	if l == nil {
		l = logger.Nop()
	}
	policy, err := startlist.NewPolicy(cfg.Schedule.Policy, cfg.Schedule.Styles, cfg.Schedule.Difficulty)
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Debug)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	opts := []Option{
		WithStore(store),
		WithPolicy(policy),
		WithAggregator(scoring.NewAggregator(scoring.WithOpenStyle(cfg.Scoring.OpenStyle))),
		WithReferenceDate(cfg.ReferenceTime()),
		WithDiplomaWorkers(cfg.Diplomas.Workers),
		WithDiplomaTemplate(cfg.Diplomas.Template),
		WithLogger(l),
	}
	var closers []func() error

	fail := func(err error) (*Service, error) {
		for _, c := range closers {
			err = errors.Join(err, c())
		}
		return nil, errors.Join(err, store.Close())
	}

	if cfg.Diplomas.Dir != "" {
		dir, err := diploma.NewDirStore(cfg.Diplomas.Dir)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithArtifactStore(dir))
	}
	if cfg.Redis.Addr != "" {
		hl, err := playback.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, hl.Close)
		opts = append(opts, WithHighlighter(hl))
		l.Info(ctx, "highlight pointer kept in redis", logger.String("addr", cfg.Redis.Addr))
	}
	if cfg.AMQP.URL != "" {
		sender, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, sender.Close)
		opts = append(opts, WithSender(sender))
		l.Info(ctx, "notifications published to amqp", logger.String("queue", cfg.AMQP.Queue))
	}
	return New(opts...), nil
}
