package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pirouette/internal/adapters/diploma"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/ranking"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// DiplomaItem is the outcome for one performer's certificate.
type DiplomaItem struct {
	EntryID     int64
	PerformerID int64
	Rank        int
	Name        string
	Artifact    string
	Err         error
}

// DiplomaReport summarizes one generation run.
type DiplomaReport struct {
	Label string
	// Removed counts certificates of the previous run that were replaced.
	Removed int
	Items   []DiplomaItem
}

// Failed counts items that could not be produced.
func (r DiplomaReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

type diplomaJob struct {
	entry     model.Entry
	performer model.Performer
	rank      int
	cert      diploma.Certificate
}

// GenerateDiplomas renders a certificate for every performer of every
// placed entry in one category. Earlier certificates of the category are
// deleted first. Items fail independently; successes are kept.
func (s *Service) GenerateDiplomas(ctx context.Context, eventID int64, rawKey string) (_ DiplomaReport, err error) {
	ctx, span := s.span(ctx, "GenerateDiplomas", attribute.Int64("event.id", eventID), attribute.String("category", rawKey))
	defer s.end(span, &err)
	const op = "generate diplomas"

	key, err := category.Parse(rawKey)
	if err != nil {
		return DiplomaReport{}, err
	}
	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return DiplomaReport{}, err
	}
	ranked, err := s.rank(ctx, op, st)
	if err != nil {
		return DiplomaReport{}, err
	}
	cat, _ := ranking.Find(ranked, key)

	report := DiplomaReport{Label: key.Label()}
	prior, err := s.store.DeleteDiplomas(ctx, eventID, report.Label)
	if err != nil {
		return DiplomaReport{}, storeErr(op, err)
	}
	for _, d := range prior {
		if d.Artifact == "" {
			continue
		}
		if err := s.artifacts.Delete(ctx, d.Artifact); err != nil {
			s.logger.Warn(ctx, "could not delete old certificate", logger.String("artifact", d.Artifact), logger.Error(err))
		}
	}
	report.Removed = len(prior)

	var jobs []diplomaJob
	for _, p := range cat.Placements {
		performers, err := s.store.GetPerformers(ctx, p.Entry.PerformerIDs)
		if err != nil {
			return DiplomaReport{}, storeErr(op, err)
		}
		org, err := s.store.GetOrganization(ctx, p.Entry.OrganizationID)
		if err != nil {
			return DiplomaReport{}, storeErr(op, err)
		}
		for _, perf := range performers {
			jobs = append(jobs, diplomaJob{
				entry: p.Entry, performer: perf, rank: p.Rank,
				cert: diploma.Certificate{
					Rank:          p.Rank,
					CategoryLabel: report.Label,
					Name:          ranking.RecipientName(p.Entry.GroupName, len(performers), perf),
					Organization:  org.Name,
					Choreography:  p.Entry.Choreography,
					Template:      s.template,
				},
			})
		}
	}

	report.Items = make([]DiplomaItem, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			report.Items[i] = s.renderDiploma(gctx, eventID, job)
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range report.Items {
		outcome := "ok"
		if it.Err != nil {
			outcome = "failed"
			s.logger.Warn(ctx, "certificate failed",
				logger.Int64("entry_id", it.EntryID),
				logger.Int64("performer_id", it.PerformerID),
				logger.Error(it.Err),
			)
		}
		metrics.RecordDiplomaItem(outcome)
	}
	s.logger.Info(ctx, "diplomas generated",
		logger.Int64("event_id", eventID),
		logger.String("category", report.Label),
		logger.Int("items", len(report.Items)),
		logger.Int("failed", report.Failed()),
		logger.Int("removed", report.Removed),
	)
	return report, nil
}

func (s *Service) renderDiploma(ctx context.Context, eventID int64, job diplomaJob) DiplomaItem {
	it := DiplomaItem{EntryID: job.entry.ID, PerformerID: job.performer.ID, Rank: job.rank, Name: job.cert.Name}
	data, err := s.renderer.Render(ctx, job.cert)
	if err != nil {
		it.Err = err
		return it
	}
	name := diploma.ArtifactName(eventID, job.entry.ID, job.performer.ID, job.rank, s.renderer.Ext())
	if err := s.artifacts.Put(ctx, name, data); err != nil {
		it.Err = err
		return it
	}
	d := model.Diploma{
		EventID: eventID, EntryID: job.entry.ID, PerformerID: job.performer.ID,
		CategoryLabel: job.cert.CategoryLabel, Rank: job.rank, Artifact: name,
	}
	if err := s.store.CreateDiploma(ctx, &d); err != nil {
		_ = s.artifacts.Delete(ctx, name)
		it.Err = storeErr("generate diplomas", err)
		return it
	}
	it.Artifact = name
	return it
}

// ListDiplomas returns stored certificates, optionally for one label.
func (s *Service) ListDiplomas(ctx context.Context, eventID int64, label string) (_ []model.Diploma, err error) {
	ctx, span := s.span(ctx, "ListDiplomas", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	list, err := s.store.ListDiplomas(ctx, eventID, label)
	return list, storeErr("list diplomas", err)
}

// Artifact returns the bytes of a stored certificate.
func (s *Service) Artifact(ctx context.Context, name string) (_ []byte, err error) {
	ctx, span := s.span(ctx, "Artifact")
	defer s.end(span, &err)
	data, err := s.artifacts.Get(ctx, name)
	switch {
	case errors.Is(err, diploma.ErrArtifactNotFound):
		return nil, errs.NotFound("artifact", "%v", err)
	case errors.Is(err, diploma.ErrInvalidName):
		return nil, errs.Validation("artifact", "%v", err)
	}
	return data, err
}
