// Package service orchestrates the competition engine: it loads state from
// the store, runs the domain computations and writes the results back.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/pirouette/internal/adapters/diploma"
	"github.com/okian/pirouette/internal/adapters/notify"
	"github.com/okian/pirouette/internal/adapters/playback"
	"github.com/okian/pirouette/internal/adapters/repository"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/internal/domain/startlist"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

const tracerName = "github.com/okian/pirouette/internal/app"

// Actor is the caller of an operation. Organization members only see
// their own organization's records; admins see everything.
type Actor struct {
	OrganizationID int64
	Admin          bool
}

// Admin is the actor used by maintenance tools.
var Admin = Actor{Admin: true} //nolint:gochecknoglobals // immutable value

// Service implements every public operation of the engine.
type Service struct {
	mu      sync.Mutex
	started bool

	store      repository.Store
	highlight  playback.Highlighter
	sender     notify.Sender
	renderer   diploma.Renderer
	artifacts  diploma.ArtifactStore
	policy     startlist.Policy
	aggregator *scoring.Aggregator
	tracer     trace.Tracer

	asOf     time.Time
	workers  int
	template string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHighlighter keeps the highlight pointer outside the primary store.
func WithHighlighter(h playback.Highlighter) Option {
	return func(s *Service) {
		if h != nil {
			s.highlight = h
		}
	}
}

// WithSender sets the notification transport.
func WithSender(sender notify.Sender) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithRenderer sets the certificate renderer.
func WithRenderer(r diploma.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithArtifactStore sets where rendered certificates go.
func WithArtifactStore(a diploma.ArtifactStore) Option {
	return func(s *Service) {
		if a != nil {
			s.artifacts = a
		}
	}
}

// WithPolicy sets the default start-list sort policy.
func WithPolicy(p startlist.Policy) Option {
	return func(s *Service) {
		if len(p.Fields) > 0 {
			s.policy = p
		}
	}
}

// WithAggregator sets the score aggregator.
func WithAggregator(a *scoring.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithReferenceDate fixes the as-of date for age classification.
func WithReferenceDate(t time.Time) Option {
	return func(s *Service) { s.asOf = t }
}

// WithDiplomaWorkers bounds concurrent certificate rendering.
func WithDiplomaWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDiplomaTemplate names the template handed to the renderer.
func WithDiplomaTemplate(name string) Option {
	return func(s *Service) { s.template = name }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without options it runs entirely in memory.
func New(opts ...Option) *Service {
	s := &Service{
		store:      repository.NewMemoryStore(),
		renderer:   diploma.ManifestRenderer{},
		artifacts:  diploma.NewMemoryStore(),
		policy:     startlist.AgeFirst(nil),
		aggregator: scoring.NewAggregator(),
		tracer:     otel.Tracer(tracerName),
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.Named("service")
	if s.highlight == nil {
		s.highlight = s.store
	}
	if s.sender == nil {
		s.sender = notify.NewLogSender(s.logger)
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "competition service started",
		logger.Int("diploma_workers", s.workers),
		logger.Any("policy", s.policy.Fields),
	)
	return nil
}

// Stop releases the store and any closable collaborator.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false

	var errList []error
	for _, c := range []any{s.sender, s.highlight} {
		if c == any(s.store) {
			continue
		}
		if closer, ok := c.(io.Closer); ok {
			errList = append(errList, closer.Close())
		}
	}
	errList = append(errList, s.store.Close())
	s.logger.Info(ctx, "competition service stopped")
	return errors.Join(errList...)
}

func (s *Service) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "Service."+op, trace.WithAttributes(attrs...))
}

// end closes span and counts domain failures. Use with a named error
// result: defer s.end(span, &err).
func (s *Service) end(span trace.Span, err *error) {
	if err != nil && *err != nil {
		kind := errs.Kind(*err)
		span.SetStatus(codes.Error, (*err).Error())
		span.SetAttributes(attribute.String("error.kind", kind))
		metrics.RecordDomainFailure(kind)
	}
	span.End()
}

// storeErr maps repository sentinels onto the domain taxonomy.
func storeErr(op string, err error) error {
	var de *errs.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return errs.NotFound(op, "%v", err)
	case errors.Is(err, repository.ErrConflict):
		return errs.Validation(op, "%v", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// eventState is what most operations read before computing.
type eventState struct {
	event   model.Event
	styles  map[int64]string
	entries []model.Entry
}

func (s *Service) loadEvent(ctx context.Context, op string, eventID int64) (model.Event, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return model.Event{}, storeErr(op, err)
	}
	return ev, nil
}

func (s *Service) styleNames(ctx context.Context, op string, eventID int64) (map[int64]string, error) {
	styles, err := s.store.ListStyles(ctx, eventID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := make(map[int64]string, len(styles))
	for _, st := range styles {
		out[st.ID] = st.Name
	}
	return out, nil
}

func (s *Service) loadState(ctx context.Context, op string, eventID int64) (eventState, error) {
	ev, err := s.loadEvent(ctx, op, eventID)
	if err != nil {
		return eventState{}, err
	}
	styles, err := s.styleNames(ctx, op, eventID)
	if err != nil {
		return eventState{}, err
	}
	entries, err := s.store.ListEntries(ctx, eventID)
	if err != nil {
		return eventState{}, storeErr(op, err)
	}
	return eventState{event: ev, styles: styles, entries: entries}, nil
}

// key resolves an entry's category. Entries whose style is gone are
// skipped by every computation instead of failing it.
func (s *Service) key(ctx context.Context, stage string, st eventState, e model.Entry) (category.Key, bool) {
	name, ok := st.styles[e.StyleID]
	if !ok {
		s.logger.Warn(ctx, "skipping entry without style",
			logger.String("stage", stage),
			logger.Int64("event_id", e.EventID),
			logger.Int64("entry_id", e.ID),
			logger.Int64("style_id", e.StyleID),
		)
		metrics.RecordSkippedEntry(stage)
		return category.Key{}, false
	}
	return e.Key(name), true
}

func (s *Service) keyed(ctx context.Context, stage string, st eventState) []startlist.Keyed {
	out := make([]startlist.Keyed, 0, len(st.entries))
	for _, e := range st.entries {
		if k, ok := s.key(ctx, stage, st, e); ok {
			out = append(out, startlist.Keyed{Entry: e, Key: k})
		}
	}
	return out
}

func (s *Service) performersByID(ctx context.Context, op string, entries []model.Entry) (map[int64]model.Performer, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, e := range entries {
		for _, id := range e.PerformerIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	list, err := s.store.GetPerformers(ctx, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := make(map[int64]model.Performer, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func pick(byID map[int64]model.Performer, ids []int64) []model.Performer {
	out := make([]model.Performer, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
