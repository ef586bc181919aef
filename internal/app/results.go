package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/ranking"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// rank aggregates every entry of the event and ranks each category.
func (s *Service) rank(ctx context.Context, op string, st eventState) ([]ranking.Category, error) {
	start := time.Now()
	scores, err := s.store.ListScores(ctx, st.event.ID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	byEntry := make(map[int64][]model.ScoreRecord)
	for _, r := range scores {
		byEntry[r.EntryID] = append(byEntry[r.EntryID], r)
	}

	candidates := make([]ranking.Candidate, 0, len(st.entries))
	for _, e := range st.entries {
		k, ok := s.key(ctx, "ranking", st, e)
		if !ok {
			continue
		}
		score, scored := s.aggregator.Aggregate(k.Style, byEntry[e.ID])
		candidates = append(candidates, ranking.Candidate{Entry: e, Key: k, Score: score, Scored: scored})
	}
	out := ranking.Rank(candidates)
	metrics.RecordRanking(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// Award is one placement ready for display.
type Award struct {
	Rank         int
	Score        float64
	Entry        model.Entry
	DisplayName  string
	Organization string
}

// AwardCategory is one ranked category.
type AwardCategory struct {
	Key               category.Key
	Label             string
	GroupDisplayOrder int
	Awards            []Award
}

// Awards ranks every category of the event. Non-admins need the results to
// be published. Unscored entries are left out; categories without a scored
// entry are omitted.
func (s *Service) Awards(ctx context.Context, actor Actor, eventID int64) (_ []AwardCategory, err error) {
	ctx, span := s.span(ctx, "Awards", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "awards"

	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && !st.event.ResultsPublished {
		return nil, errs.State(op, "results of %q are not published", st.event.Name)
	}
	ranked, err := s.rank(ctx, op, st)
	if err != nil {
		return nil, err
	}
	people, err := s.performersByID(ctx, op, st.entries)
	if err != nil {
		return nil, err
	}
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, storeErr(op, err)
	}
	orgName := make(map[int64]string, len(orgs))
	for _, o := range orgs {
		orgName[o.ID] = o.Name
	}

	out := make([]AwardCategory, len(ranked))
	for i, c := range ranked {
		ac := AwardCategory{Key: c.Key, Label: c.Key.Label(), GroupDisplayOrder: c.GroupDisplayOrder, Awards: make([]Award, len(c.Placements))}
		for j, p := range c.Placements {
			ac.Awards[j] = Award{
				Rank:         p.Rank,
				Score:        p.Score,
				Entry:        p.Entry,
				DisplayName:  ranking.DisplayName(p.Entry.GroupName, pick(people, p.Entry.PerformerIDs)),
				Organization: orgName[p.Entry.OrganizationID],
			}
		}
		out[i] = ac
	}
	s.logger.Debug(ctx, "awards computed", logger.Int64("event_id", eventID), logger.Int("categories", len(out)))
	return out, nil
}

// ScoreBreakdown lists every judge's marks for an entry with the discarded
// low and high per criterion and the resulting score.
func (s *Service) ScoreBreakdown(ctx context.Context, entryID int64) (_ scoring.Breakdown, err error) {
	ctx, span := s.span(ctx, "ScoreBreakdown", attribute.Int64("entry.id", entryID))
	defer s.end(span, &err)
	const op = "score breakdown"

	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return scoring.Breakdown{}, storeErr(op, err)
	}
	styles, err := s.styleNames(ctx, op, e.EventID)
	if err != nil {
		return scoring.Breakdown{}, err
	}
	style, ok := styles[e.StyleID]
	if !ok {
		return scoring.Breakdown{}, errs.NotFound(op, "style %d of entry %d not found", e.StyleID, e.ID)
	}
	records, err := s.store.ListEntryScores(ctx, entryID)
	if err != nil {
		return scoring.Breakdown{}, storeErr(op, err)
	}
	return s.aggregator.Breakdown(style, records), nil
}
