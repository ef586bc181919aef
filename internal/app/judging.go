package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/adapters/repository"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/judging"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// CreateJudge adds a judge to the event. The username is derived from the
// first name; a collision is a validation error.
func (s *Service) CreateJudge(ctx context.Context, eventID int64, firstName, lastName string) (_ model.Judge, err error) {
	ctx, span := s.span(ctx, "CreateJudge", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "create judge"

	if strings.TrimSpace(firstName) == "" {
		return model.Judge{}, errs.Validation(op, "judge first name is required")
	}
	if _, err := s.loadEvent(ctx, op, eventID); err != nil {
		return model.Judge{}, err
	}
	j := model.Judge{EventID: eventID, FirstName: firstName, LastName: lastName, Username: judging.Username(eventID, firstName)}
	if err := s.store.CreateJudge(ctx, &j); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Judge{}, errs.Validation(op, "username %s already exists", j.Username)
		}
		return model.Judge{}, storeErr(op, err)
	}
	s.logger.Info(ctx, "judge created", logger.Int64("event_id", eventID), logger.String("username", j.Username))
	return j, nil
}

// ListJudges returns the event's judges.
func (s *Service) ListJudges(ctx context.Context, eventID int64) (_ []model.Judge, err error) {
	ctx, span := s.span(ctx, "ListJudges", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	list, err := s.store.ListJudges(ctx, eventID)
	return list, storeErr("list judges", err)
}

// HasJudges reports whether judge accounts exist for the event.
func (s *Service) HasJudges(ctx context.Context, eventID int64) (_ bool, err error) {
	ctx, span := s.span(ctx, "HasJudges", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	list, err := s.store.ListJudges(ctx, eventID)
	if err != nil {
		return false, storeErr("has judges", err)
	}
	prefix := judging.UsernamePrefix(eventID)
	for _, j := range list {
		if strings.HasPrefix(j.Username, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteJudge removes a judge; submitted scores stay.
func (s *Service) DeleteJudge(ctx context.Context, judgeID int64) (err error) {
	ctx, span := s.span(ctx, "DeleteJudge", attribute.Int64("judge.id", judgeID))
	defer s.end(span, &err)
	if err := s.store.DeleteJudge(ctx, judgeID); err != nil {
		return storeErr("delete judge", err)
	}
	s.logger.Info(ctx, "judge deleted", logger.Int64("judge_id", judgeID))
	return nil
}

// SheetRow is one entry to score with the judge's prior marks.
type SheetRow struct {
	Entry model.Entry
	Prior *model.ScoreRecord
}

// Sheet is what a judge sees at the current cursor.
type Sheet struct {
	Judge    model.Judge
	Cursor   int
	Total    int
	Category category.Key
	// HasCategory is false when the event has no categories yet.
	HasCategory bool
	HasNext     bool
	HasPrev     bool
	Criteria    []scoring.Criterion
	Rows        []SheetRow
	// AllScored is set after a submit on the last category.
	AllScored bool
}

type judgeContext struct {
	judge   model.Judge
	session *judging.Session
	state   eventState
}

func (s *Service) judgeContext(ctx context.Context, op string, judgeID int64) (judgeContext, error) {
	j, err := s.store.GetJudge(ctx, judgeID)
	if err != nil {
		return judgeContext{}, storeErr(op, err)
	}
	st, err := s.loadState(ctx, op, j.EventID)
	if err != nil {
		return judgeContext{}, err
	}
	categories := judging.Categories(st.entries, func(e model.Entry) (category.Key, bool) {
		return s.key(ctx, "judging", st, e)
	})
	return judgeContext{judge: j, session: judging.NewSession(categories, j.Cursor), state: st}, nil
}

func (s *Service) sheet(ctx context.Context, op string, jc judgeContext) (Sheet, error) {
	sh := Sheet{
		Judge:   jc.judge,
		Cursor:  jc.session.Cursor(),
		Total:   jc.session.Len(),
		HasNext: jc.session.HasNext(),
		HasPrev: jc.session.HasPrev(),
	}
	k, ok := jc.session.Current()
	if !ok {
		return sh, nil
	}
	sh.Category, sh.HasCategory = k, true
	sh.Criteria = s.aggregator.Criteria(k.Style)

	var rows []SheetRow
	for _, e := range jc.state.entries {
		if ek, ok := jc.state.styles[e.StyleID]; ok && e.Key(ek) == k {
			rows = append(rows, SheetRow{Entry: e})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Entry.DisplayOrder, rows[j].Entry.DisplayOrder
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	for i := range rows {
		scores, err := s.store.ListEntryScores(ctx, rows[i].Entry.ID)
		if err != nil {
			return Sheet{}, storeErr(op, err)
		}
		for _, r := range scores {
			if r.JudgeID == jc.judge.ID {
				r := r
				rows[i].Prior = &r
				break
			}
		}
	}
	sh.Rows = rows
	return sh, nil
}

// JudgeSheet returns the judge's current category with prior marks
// pre-filled.
func (s *Service) JudgeSheet(ctx context.Context, judgeID int64) (_ Sheet, err error) {
	ctx, span := s.span(ctx, "JudgeSheet", attribute.Int64("judge.id", judgeID))
	defer s.end(span, &err)
	const op = "judge sheet"

	jc, err := s.judgeContext(ctx, op, judgeID)
	if err != nil {
		return Sheet{}, err
	}
	return s.sheet(ctx, op, jc)
}

// Submission is one judge request: optional marks for entries of the
// current category and a navigation action.
type Submission struct {
	// Submit stores Marks for the current category.
	Submit bool
	Marks  map[int64]judging.Marks
	Action judging.Action
}

// JudgeAct stores submitted marks and moves the judge's cursor. Omitted
// marks keep their prior value; entries with nothing entered are left
// alone.
func (s *Service) JudgeAct(ctx context.Context, judgeID int64, sub Submission) (_ Sheet, err error) {
	ctx, span := s.span(ctx, "JudgeAct",
		attribute.Int64("judge.id", judgeID),
		attribute.String("judge.action", string(sub.Action)),
	)
	defer s.end(span, &err)
	const op = "judge act"

	jc, err := s.judgeContext(ctx, op, judgeID)
	if err != nil {
		return Sheet{}, err
	}

	if sub.Submit && len(sub.Marks) > 0 {
		current, err := s.sheet(ctx, op, jc)
		if err != nil {
			return Sheet{}, err
		}
		priors := make(map[int64]SheetRow, len(current.Rows))
		for _, r := range current.Rows {
			priors[r.Entry.ID] = r
		}
		records := make([]model.ScoreRecord, 0, len(sub.Marks))
		for entryID, m := range sub.Marks {
			row, ok := priors[entryID]
			if !ok {
				return Sheet{}, errs.NotFound(op, "entry %d is not in the current category", entryID)
			}
			m = m.Restrict(current.Criteria)
			if err := m.Validate(); err != nil {
				return Sheet{}, err
			}
			if rec, ok := judging.Merge(row.Prior, entryID, judgeID, m); ok {
				records = append(records, rec)
			}
		}
		sort.Slice(records, func(i, j int) bool { return records[i].EntryID < records[j].EntryID })
		if len(records) > 0 {
			if err := s.store.UpsertScores(ctx, records); err != nil {
				return Sheet{}, storeErr(op, err)
			}
		}
		metrics.RecordScoreSubmission("written", len(records))
		metrics.RecordScoreSubmission("empty", len(sub.Marks)-len(records))
	}

	step := jc.session.Apply(sub.Submit, sub.Action)
	if step.Cursor != jc.judge.Cursor {
		if err := s.store.SetJudgeCursor(ctx, judgeID, step.Cursor); err != nil {
			return Sheet{}, storeErr(op, err)
		}
		jc.judge.Cursor = step.Cursor
	}
	if step.AllScored {
		metrics.RecordJudgeSessionCompleted()
	}
	s.logger.Info(ctx, "judge step",
		logger.Int64("judge_id", judgeID),
		logger.Int64("event_id", jc.judge.EventID),
		logger.Int("cursor", step.Cursor),
		logger.Bool("all_scored", step.AllScored),
	)

	sh, err := s.sheet(ctx, op, jc)
	if err != nil {
		return Sheet{}, err
	}
	sh.AllScored = step.AllScored
	return sh, nil
}
