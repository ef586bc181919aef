package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/classify"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// EntryInput holds the registrable fields of an entry. The age bracket is
// never supplied: it is derived from the performers.
type EntryInput struct {
	OrganizationID int64
	StyleID        int64
	GroupSize      category.GroupSize
	Difficulty     category.Difficulty
	Choreographer  string
	Choreography   string
	GroupName      string
	PerformerIDs   []int64
	AudioSeconds   *int
}

func (s *Service) referenceDate() time.Time {
	if s.asOf.IsZero() {
		return time.Now()
	}
	return s.asOf
}

// checkEntry validates in against the event and returns the classified
// bracket for its performers.
func (s *Service) checkEntry(ctx context.Context, op string, eventID, orgID int64, in EntryInput) (category.AgeBracket, error) {
	if !in.GroupSize.Valid() {
		return "", errs.Validation(op, "unknown group size %q", in.GroupSize)
	}
	if !in.Difficulty.Valid() {
		return "", errs.Validation(op, "unknown difficulty %q", in.Difficulty)
	}
	if in.AudioSeconds != nil && *in.AudioSeconds <= 0 {
		return "", errs.Validation(op, "audio length must be positive")
	}
	styles, err := s.styleNames(ctx, op, eventID)
	if err != nil {
		return "", err
	}
	if _, ok := styles[in.StyleID]; !ok {
		return "", errs.Validation(op, "style %d is not offered at this event", in.StyleID)
	}

	uniq := slices.Clone(in.PerformerIDs)
	slices.Sort(uniq)
	if len(slices.Compact(uniq)) != len(in.PerformerIDs) {
		return "", errs.Validation(op, "a performer is listed twice")
	}
	if err := classify.CheckGroup(in.GroupSize, len(in.PerformerIDs), in.GroupName); err != nil {
		return "", err
	}

	performers, err := s.store.GetPerformers(ctx, in.PerformerIDs)
	if err != nil {
		return "", storeErr(op, err)
	}
	births := make([]time.Time, 0, len(performers))
	for _, p := range performers {
		if p.OrganizationID != orgID {
			return "", errs.NotFound(op, "performer %d not found", p.ID)
		}
		births = append(births, p.BirthDate)
	}
	return classify.Classify(births, s.referenceDate()).Bracket, nil
}

// ownedEntry loads an entry the actor may change while the event's
// registration window is open.
func (s *Service) ownedEntry(ctx context.Context, op string, actor Actor, entryID int64) (model.Entry, model.Event, error) {
	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return model.Entry{}, model.Event{}, storeErr(op, err)
	}
	if !actor.Admin && e.OrganizationID != actor.OrganizationID {
		return model.Entry{}, model.Event{}, errs.NotFound(op, "entry %d not found", entryID)
	}
	ev, err := s.loadEvent(ctx, op, e.EventID)
	if err != nil {
		return model.Entry{}, model.Event{}, err
	}
	return e, ev, nil
}

// RegisterEntry validates and stores a new entry. Registration must be
// open; the performer count must fit the group-size class.
func (s *Service) RegisterEntry(ctx context.Context, actor Actor, eventID int64, in EntryInput) (_ model.Entry, err error) {
	ctx, span := s.span(ctx, "RegisterEntry", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "register entry"

	orgID, err := scope(op, actor, in.OrganizationID)
	if err != nil {
		return model.Entry{}, err
	}
	ev, err := s.loadEvent(ctx, op, eventID)
	if err != nil {
		return model.Entry{}, err
	}
	if !ev.RegistrationOpen {
		return model.Entry{}, errs.State(op, "registration for %q is closed", ev.Name)
	}
	bracket, err := s.checkEntry(ctx, op, eventID, orgID, in)
	if err != nil {
		return model.Entry{}, err
	}

	e := model.Entry{
		EventID: eventID, OrganizationID: orgID, StyleID: in.StyleID,
		GroupSize: in.GroupSize, AgeBracket: bracket, Difficulty: in.Difficulty,
		Choreographer: in.Choreographer, Choreography: in.Choreography, GroupName: in.GroupName,
		PerformerIDs: slices.Clone(in.PerformerIDs), AudioSeconds: in.AudioSeconds,
	}
	if err := s.store.CreateEntry(ctx, &e); err != nil {
		return model.Entry{}, storeErr(op, err)
	}
	metrics.RecordEntryRegistered()
	s.logger.Info(ctx, "entry registered",
		logger.Int64("event_id", eventID),
		logger.Int64("entry_id", e.ID),
		logger.String("age_bracket", string(bracket)),
	)
	return e, nil
}

// EditEntry replaces an entry's registrable fields and reclassifies it.
// The entry keeps its start-list position.
func (s *Service) EditEntry(ctx context.Context, actor Actor, entryID int64, in EntryInput) (_ model.Entry, err error) {
	ctx, span := s.span(ctx, "EditEntry", attribute.Int64("entry.id", entryID))
	defer s.end(span, &err)
	const op = "edit entry"

	e, ev, err := s.ownedEntry(ctx, op, actor, entryID)
	if err != nil {
		return model.Entry{}, err
	}
	if !ev.RegistrationOpen {
		return model.Entry{}, errs.State(op, "registration for %q is closed", ev.Name)
	}
	bracket, err := s.checkEntry(ctx, op, e.EventID, e.OrganizationID, in)
	if err != nil {
		return model.Entry{}, err
	}
	e.StyleID, e.GroupSize, e.AgeBracket, e.Difficulty = in.StyleID, in.GroupSize, bracket, in.Difficulty
	e.Choreographer, e.Choreography, e.GroupName = in.Choreographer, in.Choreography, in.GroupName
	e.PerformerIDs = slices.Clone(in.PerformerIDs)
	if in.AudioSeconds != nil {
		e.AudioSeconds = in.AudioSeconds
	}
	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return model.Entry{}, storeErr(op, err)
	}
	s.logger.Info(ctx, "entry edited", logger.Int64("event_id", e.EventID), logger.Int64("entry_id", e.ID))
	return e, nil
}

// DeleteEntry removes an entry and its score records.
func (s *Service) DeleteEntry(ctx context.Context, actor Actor, entryID int64) (err error) {
	ctx, span := s.span(ctx, "DeleteEntry", attribute.Int64("entry.id", entryID))
	defer s.end(span, &err)
	const op = "delete entry"

	e, ev, err := s.ownedEntry(ctx, op, actor, entryID)
	if err != nil {
		return err
	}
	if !ev.RegistrationOpen {
		return errs.State(op, "registration for %q is closed", ev.Name)
	}
	if err := s.store.DeleteEntry(ctx, entryID); err != nil {
		return storeErr(op, err)
	}
	s.logger.Info(ctx, "entry deleted", logger.Int64("event_id", e.EventID), logger.Int64("entry_id", e.ID))
	return nil
}

// SetAudio records the music length of an entry. The music window must be
// open.
func (s *Service) SetAudio(ctx context.Context, actor Actor, entryID int64, seconds int) (_ model.Entry, err error) {
	ctx, span := s.span(ctx, "SetAudio", attribute.Int64("entry.id", entryID))
	defer s.end(span, &err)
	const op = "set audio"

	if seconds <= 0 {
		return model.Entry{}, errs.Validation(op, "audio length must be positive, got %d", seconds)
	}
	e, ev, err := s.ownedEntry(ctx, op, actor, entryID)
	if err != nil {
		return model.Entry{}, err
	}
	if !ev.MusicOpen {
		return model.Entry{}, errs.State(op, "music upload for %q is closed", ev.Name)
	}
	e.AudioSeconds = model.Int(seconds)
	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return model.Entry{}, storeErr(op, err)
	}
	s.logger.Info(ctx, "entry audio set", logger.Int64("entry_id", e.ID), logger.Int("seconds", seconds))
	return e, nil
}

// GetEntry returns one entry visible to actor.
func (s *Service) GetEntry(ctx context.Context, actor Actor, entryID int64) (_ model.Entry, err error) {
	ctx, span := s.span(ctx, "GetEntry", attribute.Int64("entry.id", entryID))
	defer s.end(span, &err)
	e, _, err := s.ownedEntry(ctx, "get entry", actor, entryID)
	return e, err
}

// ListEntries returns the event's entries visible to actor.
func (s *Service) ListEntries(ctx context.Context, actor Actor, eventID int64) (_ []model.Entry, err error) {
	ctx, span := s.span(ctx, "ListEntries", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if _, err := s.loadEvent(ctx, "list entries", eventID); err != nil {
		return nil, err
	}
	all, err := s.store.ListEntries(ctx, eventID)
	if err != nil {
		return nil, storeErr("list entries", err)
	}
	if actor.Admin {
		return all, nil
	}
	out := make([]model.Entry, 0, len(all))
	for _, e := range all {
		if e.OrganizationID == actor.OrganizationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type duplicateKey struct {
	styleID       int64
	groupSize     category.GroupSize
	ageBracket    category.AgeBracket
	difficulty    category.Difficulty
	choreographer string
}

// MergeDuplicates folds entries that share style, class, bracket,
// difficulty and choreographer (trimmed, case-insensitive) into the lowest
// id of each set. Performer lists are unioned in order. It returns the
// number of entries removed.
func (s *Service) MergeDuplicates(ctx context.Context, eventID int64) (_ int, err error) {
	ctx, span := s.span(ctx, "MergeDuplicates", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "merge entries"

	if _, err := s.loadEvent(ctx, op, eventID); err != nil {
		return 0, err
	}
	entries, err := s.store.ListEntries(ctx, eventID)
	if err != nil {
		return 0, storeErr(op, err)
	}

	sets := make(map[duplicateKey][]model.Entry)
	var order []duplicateKey
	for _, e := range entries {
		k := duplicateKey{
			styleID: e.StyleID, groupSize: e.GroupSize, ageBracket: e.AgeBracket, difficulty: e.Difficulty,
			choreographer: strings.ToLower(strings.TrimSpace(e.Choreographer)),
		}
		if _, ok := sets[k]; !ok {
			order = append(order, k)
		}
		sets[k] = append(sets[k], e)
	}

	merged := 0
	for _, k := range order {
		set := sets[k]
		if len(set) < 2 {
			continue
		}
		sort.Slice(set, func(i, j int) bool { return set[i].ID < set[j].ID })
		primary := set[0]
		performers := slices.Clone(primary.PerformerIDs)
		dups := make([]int64, 0, len(set)-1)
		for _, d := range set[1:] {
			dups = append(dups, d.ID)
			for _, p := range d.PerformerIDs {
				if !slices.Contains(performers, p) {
					performers = append(performers, p)
				}
			}
		}
		if err := s.store.MergeEntries(ctx, primary.ID, performers, dups); err != nil {
			return merged, storeErr(op, err)
		}
		merged += len(dups)
		s.logger.Info(ctx, "entries merged",
			logger.Int64("event_id", eventID),
			logger.Int64("primary_id", primary.ID),
			logger.Any("duplicates", dups),
		)
	}
	metrics.RecordEntriesMerged(merged)
	return merged, nil
}

// OrganizationSummary counts an organization's participation.
type OrganizationSummary struct {
	Organization model.Organization
	// Entries counts entries per group-size class.
	Entries map[category.GroupSize]int
	// Performers counts distinct performers.
	Performers int
	// Slots counts performer appearances across entries.
	Slots int
}

// Summary is the per-organization breakdown of an event plus totals.
type Summary struct {
	Organizations []OrganizationSummary
	Totals        OrganizationSummary
}

// Summarize builds the participation summary of an event.
func (s *Service) Summarize(ctx context.Context, eventID int64) (_ Summary, err error) {
	ctx, span := s.span(ctx, "Summarize", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "summarize"

	if _, err := s.loadEvent(ctx, op, eventID); err != nil {
		return Summary{}, err
	}
	entries, err := s.store.ListEntries(ctx, eventID)
	if err != nil {
		return Summary{}, storeErr(op, err)
	}

	type acc struct {
		sum    OrganizationSummary
		people map[int64]bool
	}
	byOrg := make(map[int64]*acc)
	var orgIDs []int64
	total := acc{sum: OrganizationSummary{Entries: make(map[category.GroupSize]int)}, people: make(map[int64]bool)}
	for _, e := range entries {
		a, ok := byOrg[e.OrganizationID]
		if !ok {
			a = &acc{sum: OrganizationSummary{Entries: make(map[category.GroupSize]int)}, people: make(map[int64]bool)}
			byOrg[e.OrganizationID] = a
			orgIDs = append(orgIDs, e.OrganizationID)
		}
		for _, x := range []*acc{a, &total} {
			x.sum.Entries[e.GroupSize]++
			x.sum.Slots += len(e.PerformerIDs)
			for _, p := range e.PerformerIDs {
				x.people[p] = true
			}
		}
	}

	slices.Sort(orgIDs)
	out := Summary{Organizations: make([]OrganizationSummary, 0, len(orgIDs))}
	for _, id := range orgIDs {
		a := byOrg[id]
		o, err := s.store.GetOrganization(ctx, id)
		if err != nil {
			return Summary{}, storeErr(op, err)
		}
		a.sum.Organization = o
		a.sum.Performers = len(a.people)
		out.Organizations = append(out.Organizations, a.sum)
	}
	total.sum.Performers = len(total.people)
	out.Totals = total.sum
	return out, nil
}

// CategoryLint reports style names in the event's categories that probably
// denote the same category. maxDistance <= 0 uses the default.
func (s *Service) CategoryLint(ctx context.Context, eventID int64, maxDistance int) (_ []category.Similar, err error) {
	ctx, span := s.span(ctx, "CategoryLint", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	st, err := s.loadState(ctx, "category lint", eventID)
	if err != nil {
		return nil, err
	}
	keyed := s.keyed(ctx, "lint", st)
	keys := make([]category.Key, len(keyed))
	for i, k := range keyed {
		keys[i] = k.Key
	}
	return category.Lint(keys, maxDistance), nil
}
