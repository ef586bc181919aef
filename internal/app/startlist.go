package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// OrderResult reports a written ordering.
type OrderResult struct {
	Status model.StartListStatus
	// Slots is the number of entries and ceremonies given a position.
	Slots int
}

// DefaultOrder regenerates the start list from the sort policy. The
// publication status is kept when published and becomes saved otherwise.
func (s *Service) DefaultOrder(ctx context.Context, eventID int64) (_ OrderResult, err error) {
	ctx, span := s.span(ctx, "DefaultOrder", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "default order"

	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return OrderResult{}, err
	}
	a := startlist.Default(s.keyed(ctx, "default_order", st), s.policy)
	status := startlist.Saved(st.event.StartList)
	if err := s.store.ApplyOrdering(ctx, eventID, a, status); err != nil {
		return OrderResult{}, storeErr(op, err)
	}
	metrics.RecordStartListOperation("default")
	s.logger.Info(ctx, "start list ordered by policy", logger.Int64("event_id", eventID), logger.Int("slots", a.Len()))
	return OrderResult{Status: status, Slots: a.Len()}, nil
}

// manualAssignment validates a submitted order against the event.
func (s *Service) manualAssignment(ctx context.Context, op string, st eventState, ids []string) (startlist.Assignment, error) {
	order, err := startlist.ParseSlotIDs(ids)
	if err != nil {
		return startlist.Assignment{}, err
	}
	entries := make(map[int64]startlist.Keyed, len(st.entries))
	for _, k := range s.keyed(ctx, "manual_order", st) {
		entries[k.Entry.ID] = k
	}
	list, err := s.store.ListCeremonies(ctx, st.event.ID)
	if err != nil {
		return startlist.Assignment{}, storeErr(op, err)
	}
	ceremonies := make(map[int64]model.Ceremony, len(list))
	for _, c := range list {
		ceremonies[c.ID] = c
	}
	return startlist.Manual(order, entries, ceremonies)
}

// SaveOrder writes a submitted order of slot ids ("17", "ceremony-3").
// Concurrent saves for one event race and the last one wins.
func (s *Service) SaveOrder(ctx context.Context, eventID int64, ids []string) (_ OrderResult, err error) {
	ctx, span := s.span(ctx, "SaveOrder", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "save order"

	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return OrderResult{}, err
	}
	a, err := s.manualAssignment(ctx, op, st, ids)
	if err != nil {
		return OrderResult{}, err
	}
	status := startlist.Saved(st.event.StartList)
	if err := s.store.ApplyOrdering(ctx, eventID, a, status); err != nil {
		return OrderResult{}, storeErr(op, err)
	}
	metrics.RecordStartListOperation("save")
	s.logger.Info(ctx, "start list saved", logger.Int64("event_id", eventID), logger.Int("slots", a.Len()))
	return OrderResult{Status: status, Slots: a.Len()}, nil
}

// Publish optionally saves ids as the new order and makes the start list
// public. An event with neither entries nor ceremonies cannot be published.
func (s *Service) Publish(ctx context.Context, eventID int64, ids []string) (_ OrderResult, err error) {
	ctx, span := s.span(ctx, "Publish", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "publish"

	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return OrderResult{}, err
	}
	var a startlist.Assignment
	if len(ids) > 0 {
		if a, err = s.manualAssignment(ctx, op, st, ids); err != nil {
			return OrderResult{}, err
		}
	}
	ceremonies, err := s.store.ListCeremonies(ctx, eventID)
	if err != nil {
		return OrderResult{}, storeErr(op, err)
	}
	status, err := startlist.Publish(st.event.StartList, len(st.entries)+len(ceremonies))
	if err != nil {
		return OrderResult{}, err
	}
	if err := s.store.ApplyOrdering(ctx, eventID, a, status); err != nil {
		return OrderResult{}, storeErr(op, err)
	}
	metrics.RecordStartListOperation("publish")
	s.logger.Info(ctx, "start list published", logger.Int64("event_id", eventID), logger.Int("slots", a.Len()))
	return OrderResult{Status: status, Slots: a.Len()}, nil
}

// Unpublish hides the start list without touching the order.
func (s *Service) Unpublish(ctx context.Context, eventID int64) (_ OrderResult, err error) {
	ctx, span := s.span(ctx, "Unpublish", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "unpublish"

	ev, err := s.loadEvent(ctx, op, eventID)
	if err != nil {
		return OrderResult{}, err
	}
	status := startlist.Unpublish(ev.StartList)
	if err := s.store.ApplyOrdering(ctx, eventID, startlist.Assignment{}, status); err != nil {
		return OrderResult{}, storeErr(op, err)
	}
	metrics.RecordStartListOperation("unpublish")
	s.logger.Info(ctx, "start list unpublished", logger.Int64("event_id", eventID))
	return OrderResult{Status: status}, nil
}

// Timeline renders the start list. Non-admins only see a published list,
// with the performers of large named groups folded into the group name.
func (s *Service) Timeline(ctx context.Context, actor Actor, eventID int64) (_ startlist.Timeline, err error) {
	ctx, span := s.span(ctx, "Timeline", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "timeline"

	st, err := s.loadState(ctx, op, eventID)
	if err != nil {
		return startlist.Timeline{}, err
	}
	if !actor.Admin && !st.event.StartListPublished() {
		return startlist.Timeline{}, errs.State(op, "the start list of %q is not published", st.event.Name)
	}
	ceremonies, err := s.store.ListCeremonies(ctx, eventID)
	if err != nil {
		return startlist.Timeline{}, storeErr(op, err)
	}
	keyed := s.keyed(ctx, "timeline", st)
	entries := make([]model.Entry, len(keyed))
	for i, k := range keyed {
		entries[i] = k.Entry
	}
	people, err := s.performersByID(ctx, op, entries)
	if err != nil {
		return startlist.Timeline{}, err
	}
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return startlist.Timeline{}, storeErr(op, err)
	}
	orgByID := make(map[int64]model.Organization, len(orgs))
	for _, o := range orgs {
		orgByID[o.ID] = o
	}

	sources := make([]startlist.EntrySource, len(keyed))
	for i, k := range keyed {
		o := orgByID[k.Entry.OrganizationID]
		sources[i] = startlist.EntrySource{
			Entry:        k.Entry,
			Key:          k.Key,
			Performers:   pick(people, k.Entry.PerformerIDs),
			Organization: o.Name,
			City:         o.City,
		}
	}
	tl, err := startlist.BuildTimeline(st.event.StartTime, sources, ceremonies, startlist.Viewer{Superuser: actor.Admin})
	if err != nil {
		return startlist.Timeline{}, err
	}
	metrics.UpdateTimelineSlots(len(tl.Slots))
	return tl, nil
}

// SetHighlight points the event's live presentation at a category key.
// An empty key clears the pointer. The last write wins.
func (s *Service) SetHighlight(ctx context.Context, eventID int64, key string) (err error) {
	ctx, span := s.span(ctx, "SetHighlight", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "set highlight"

	if key != "" {
		if _, err := category.Parse(key); err != nil {
			return err
		}
	}
	if _, err := s.loadEvent(ctx, op, eventID); err != nil {
		return err
	}
	if err := s.highlight.SetHighlight(ctx, eventID, key); err != nil {
		return storeErr(op, err)
	}
	metrics.RecordHighlightChange()
	s.logger.Info(ctx, "highlight set", logger.Int64("event_id", eventID), logger.String("key", key))
	return nil
}

// GetHighlight returns the event's highlight pointer, empty when unset.
func (s *Service) GetHighlight(ctx context.Context, eventID int64) (_ string, err error) {
	ctx, span := s.span(ctx, "GetHighlight", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if _, err := s.loadEvent(ctx, "get highlight", eventID); err != nil {
		return "", err
	}
	key, err := s.highlight.GetHighlight(ctx, eventID)
	return key, storeErr("get highlight", err)
}
