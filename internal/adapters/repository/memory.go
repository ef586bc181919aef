package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
)

// MemoryStore is an in-process Store. A single RWMutex serializes writers,
// which makes every multi-row write atomic. Values are copied on the way in
// and out so callers never share slices or pointers with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64

	events        map[int64]model.Event
	styles        map[int64]model.Style
	organizations map[int64]model.Organization
	performers    map[int64]model.Performer
	entries       map[int64]model.Entry
	ceremonies    map[int64]model.Ceremony
	scores        map[scoreKey]model.ScoreRecord
	judges        map[int64]model.Judge
	highlights    map[int64]string
	diplomas      map[int64]model.Diploma
}

type scoreKey struct {
	entryID int64
	judgeID int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:        make(map[int64]model.Event),
		styles:        make(map[int64]model.Style),
		organizations: make(map[int64]model.Organization),
		performers:    make(map[int64]model.Performer),
		entries:       make(map[int64]model.Entry),
		ceremonies:    make(map[int64]model.Ceremony),
		scores:        make(map[scoreKey]model.ScoreRecord),
		judges:        make(map[int64]model.Judge),
		highlights:    make(map[int64]string),
		diplomas:      make(map[int64]model.Diploma),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneEntry(e model.Entry) model.Entry {
	e.PerformerIDs = slices.Clone(e.PerformerIDs)
	e.AudioSeconds = cloneInt(e.AudioSeconds)
	e.DisplayOrder = cloneInt(e.DisplayOrder)
	e.GroupDisplayOrder = cloneInt(e.GroupDisplayOrder)
	return e
}

func cloneScore(r model.ScoreRecord) model.ScoreRecord {
	r.Technique = cloneFloat(r.Technique)
	r.Composition = cloneFloat(r.Composition)
	r.Image = cloneFloat(r.Image)
	r.ShowValue = cloneFloat(r.ShowValue)
	return r
}

func cloneCeremony(c model.Ceremony) model.Ceremony {
	c.DisplayOrder = cloneInt(c.DisplayOrder)
	return c
}

func sortedValues[K comparable, V any](m map[K]V, keep func(V) bool, id func(V) int64) []V {
	out := make([]V, 0)
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

// CreateEvent stores e and assigns its id.
func (s *MemoryStore) CreateEvent(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.events[e.ID] = *e
	return nil
}

// GetEvent returns the event with id.
func (s *MemoryStore) GetEvent(_ context.Context, id int64) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, notFound("event", id)
	}
	return e, nil
}

// ListEvents returns every event ordered by id.
func (s *MemoryStore) ListEvents(_ context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.events, func(model.Event) bool { return true }, func(e model.Event) int64 { return e.ID }), nil
}

// UpdateEvent replaces the stored event.
func (s *MemoryStore) UpdateEvent(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return notFound("event", e.ID)
	}
	s.events[e.ID] = e
	return nil
}

// DeleteEvent removes the event and everything that belongs to it.
func (s *MemoryStore) DeleteEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return notFound("event", id)
	}
	delete(s.events, id)
	delete(s.highlights, id)
	for k, st := range s.styles {
		if st.EventID == id {
			delete(s.styles, k)
		}
	}
	for k, e := range s.entries {
		if e.EventID == id {
			s.deleteEntryLocked(k)
		}
	}
	for k, c := range s.ceremonies {
		if c.EventID == id {
			delete(s.ceremonies, k)
		}
	}
	for k, j := range s.judges {
		if j.EventID == id {
			delete(s.judges, k)
		}
	}
	for k, d := range s.diplomas {
		if d.EventID == id {
			delete(s.diplomas, k)
		}
	}
	return nil
}

// CreateStyle stores st; names are unique per event.
func (s *MemoryStore) CreateStyle(_ context.Context, st *model.Style) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.styles {
		if other.EventID == st.EventID && other.Name == st.Name {
			return fmt.Errorf("style %q: %w", st.Name, ErrConflict)
		}
	}
	st.ID = s.id()
	s.styles[st.ID] = *st
	return nil
}

// ListStyles returns the event's styles ordered by id.
func (s *MemoryStore) ListStyles(_ context.Context, eventID int64) ([]model.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.styles,
		func(st model.Style) bool { return st.EventID == eventID },
		func(st model.Style) int64 { return st.ID }), nil
}

// CreateOrganization stores o.
func (s *MemoryStore) CreateOrganization(_ context.Context, o *model.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	s.organizations[o.ID] = *o
	return nil
}

// GetOrganization returns the organization with id.
func (s *MemoryStore) GetOrganization(_ context.Context, id int64) (model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations[id]
	if !ok {
		return model.Organization{}, notFound("organization", id)
	}
	return o, nil
}

// ListOrganizations returns every organization ordered by id.
func (s *MemoryStore) ListOrganizations(_ context.Context) ([]model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.organizations,
		func(model.Organization) bool { return true },
		func(o model.Organization) int64 { return o.ID }), nil
}

// UpdateOrganization replaces the stored organization.
func (s *MemoryStore) UpdateOrganization(_ context.Context, o model.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.organizations[o.ID]; !ok {
		return notFound("organization", o.ID)
	}
	s.organizations[o.ID] = o
	return nil
}

// CreatePerformer stores p.
func (s *MemoryStore) CreatePerformer(_ context.Context, p *model.Performer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.organizations[p.OrganizationID]; !ok {
		return notFound("organization", p.OrganizationID)
	}
	p.ID = s.id()
	s.performers[p.ID] = *p
	return nil
}

// GetPerformers returns the performers with ids, in order.
func (s *MemoryStore) GetPerformers(_ context.Context, ids []int64) ([]model.Performer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Performer, 0, len(ids))
	for _, id := range ids {
		p, ok := s.performers[id]
		if !ok {
			return nil, notFound("performer", id)
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPerformers returns the organization's performers ordered by id.
func (s *MemoryStore) ListPerformers(_ context.Context, organizationID int64) ([]model.Performer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.performers,
		func(p model.Performer) bool { return p.OrganizationID == organizationID },
		func(p model.Performer) int64 { return p.ID }), nil
}

// CreateEntry stores e.
func (s *MemoryStore) CreateEntry(_ context.Context, e *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.EventID]; !ok {
		return notFound("event", e.EventID)
	}
	e.ID = s.id()
	s.entries[e.ID] = cloneEntry(*e)
	return nil
}

// UpdateEntry replaces the stored entry.
func (s *MemoryStore) UpdateEntry(_ context.Context, e model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		return notFound("entry", e.ID)
	}
	s.entries[e.ID] = cloneEntry(e)
	return nil
}

// DeleteEntry removes the entry with its scores.
func (s *MemoryStore) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return notFound("entry", id)
	}
	s.deleteEntryLocked(id)
	return nil
}

func (s *MemoryStore) deleteEntryLocked(id int64) {
	delete(s.entries, id)
	for k := range s.scores {
		if k.entryID == id {
			delete(s.scores, k)
		}
	}
}

// GetEntry returns the entry with id.
func (s *MemoryStore) GetEntry(_ context.Context, id int64) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return model.Entry{}, notFound("entry", id)
	}
	return cloneEntry(e), nil
}

// ListEntries returns the event's entries ordered by id.
func (s *MemoryStore) ListEntries(_ context.Context, eventID int64) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedValues(s.entries,
		func(e model.Entry) bool { return e.EventID == eventID },
		func(e model.Entry) int64 { return e.ID })
	for i := range out {
		out[i] = cloneEntry(out[i])
	}
	return out, nil
}

// MergeEntries folds duplicates into primary.
func (s *MemoryStore) MergeEntries(_ context.Context, primary int64, performerIDs []int64, duplicates []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[primary]
	if !ok {
		return notFound("entry", primary)
	}
	for _, id := range duplicates {
		if _, ok := s.entries[id]; !ok {
			return notFound("entry", id)
		}
	}
	p.PerformerIDs = slices.Clone(performerIDs)
	s.entries[primary] = p
	for _, id := range duplicates {
		s.deleteEntryLocked(id)
	}
	return nil
}

// CreateCeremony stores c.
func (s *MemoryStore) CreateCeremony(_ context.Context, c *model.Ceremony) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[c.EventID]; !ok {
		return notFound("event", c.EventID)
	}
	c.ID = s.id()
	s.ceremonies[c.ID] = cloneCeremony(*c)
	return nil
}

// ListCeremonies returns the event's ceremonies ordered by id.
func (s *MemoryStore) ListCeremonies(_ context.Context, eventID int64) ([]model.Ceremony, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedValues(s.ceremonies,
		func(c model.Ceremony) bool { return c.EventID == eventID },
		func(c model.Ceremony) int64 { return c.ID })
	for i := range out {
		out[i] = cloneCeremony(out[i])
	}
	return out, nil
}

// DeleteCeremony removes the ceremony with id.
func (s *MemoryStore) DeleteCeremony(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ceremonies[id]; !ok {
		return notFound("ceremony", id)
	}
	delete(s.ceremonies, id)
	return nil
}

// ApplyOrdering writes a and status; nothing is written if any slot is
// missing.
func (s *MemoryStore) ApplyOrdering(_ context.Context, eventID int64, a startlist.Assignment, status model.StartListStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return notFound("event", eventID)
	}
	for id := range a.Entries {
		if e, ok := s.entries[id]; !ok || e.EventID != eventID {
			return notFound("entry", id)
		}
	}
	for id := range a.Ceremonies {
		if c, ok := s.ceremonies[id]; !ok || c.EventID != eventID {
			return notFound("ceremony", id)
		}
	}
	for id, pos := range a.Entries {
		e := s.entries[id]
		e.DisplayOrder = model.Int(pos.DisplayOrder)
		e.GroupDisplayOrder = model.Int(pos.GroupDisplayOrder)
		s.entries[id] = e
	}
	for id, pos := range a.Ceremonies {
		c := s.ceremonies[id]
		c.DisplayOrder = model.Int(pos)
		s.ceremonies[id] = c
	}
	ev.StartList = status
	s.events[eventID] = ev
	return nil
}

// UpsertScores writes records keyed by (entry, judge).
func (s *MemoryStore) UpsertScores(_ context.Context, records []model.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, ok := s.entries[r.EntryID]; !ok {
			return notFound("entry", r.EntryID)
		}
	}
	now := time.Now().UTC()
	for _, r := range records {
		k := scoreKey{entryID: r.EntryID, judgeID: r.JudgeID}
		if prior, ok := s.scores[k]; ok {
			r.ID = prior.ID
		} else {
			r.ID = s.id()
		}
		r.UpdatedAt = now
		s.scores[k] = cloneScore(r)
	}
	return nil
}

// ListScores returns every score of the event's entries ordered by id.
func (s *MemoryStore) ListScores(_ context.Context, eventID int64) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedValues(s.scores,
		func(r model.ScoreRecord) bool { return s.entries[r.EntryID].EventID == eventID },
		func(r model.ScoreRecord) int64 { return r.ID })
	for i := range out {
		out[i] = cloneScore(out[i])
	}
	return out, nil
}

// ListEntryScores returns the entry's scores ordered by id.
func (s *MemoryStore) ListEntryScores(_ context.Context, entryID int64) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedValues(s.scores,
		func(r model.ScoreRecord) bool { return r.EntryID == entryID },
		func(r model.ScoreRecord) int64 { return r.ID })
	for i := range out {
		out[i] = cloneScore(out[i])
	}
	return out, nil
}

// CreateJudge stores j; usernames are unique.
func (s *MemoryStore) CreateJudge(_ context.Context, j *model.Judge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.judges {
		if other.Username == j.Username {
			return fmt.Errorf("judge %q: %w", j.Username, ErrConflict)
		}
	}
	j.ID = s.id()
	s.judges[j.ID] = *j
	return nil
}

// GetJudge returns the judge with id.
func (s *MemoryStore) GetJudge(_ context.Context, id int64) (model.Judge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.judges[id]
	if !ok {
		return model.Judge{}, notFound("judge", id)
	}
	return j, nil
}

// ListJudges returns the event's judges ordered by id.
func (s *MemoryStore) ListJudges(_ context.Context, eventID int64) ([]model.Judge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.judges,
		func(j model.Judge) bool { return j.EventID == eventID },
		func(j model.Judge) int64 { return j.ID }), nil
}

// SetJudgeCursor stores the judge's category position.
func (s *MemoryStore) SetJudgeCursor(_ context.Context, id int64, cursor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.judges[id]
	if !ok {
		return notFound("judge", id)
	}
	j.Cursor = cursor
	s.judges[id] = j
	return nil
}

// DeleteJudge removes the judge. Its scores stay with the entries.
func (s *MemoryStore) DeleteJudge(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.judges[id]; !ok {
		return notFound("judge", id)
	}
	delete(s.judges, id)
	return nil
}

// SetHighlight stores the event's highlight pointer.
func (s *MemoryStore) SetHighlight(_ context.Context, eventID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights[eventID] = key
	return nil
}

// GetHighlight returns the event's highlight pointer, empty when unset.
func (s *MemoryStore) GetHighlight(_ context.Context, eventID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlights[eventID], nil
}

// DeleteDiplomas removes and returns the diplomas of one category.
func (s *MemoryStore) DeleteDiplomas(_ context.Context, eventID int64, label string) ([]model.Diploma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := sortedValues(s.diplomas,
		func(d model.Diploma) bool { return d.EventID == eventID && d.CategoryLabel == label },
		func(d model.Diploma) int64 { return d.ID })
	for _, d := range out {
		delete(s.diplomas, d.ID)
	}
	return out, nil
}

// CreateDiploma stores d.
func (s *MemoryStore) CreateDiploma(_ context.Context, d *model.Diploma) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	s.diplomas[d.ID] = *d
	return nil
}

// ListDiplomas returns the event's diplomas ordered by label and rank.
func (s *MemoryStore) ListDiplomas(_ context.Context, eventID int64, label string) ([]model.Diploma, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedValues(s.diplomas,
		func(d model.Diploma) bool { return d.EventID == eventID && (label == "" || d.CategoryLabel == label) },
		func(d model.Diploma) int64 { return d.ID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CategoryLabel != out[j].CategoryLabel {
			return out[i].CategoryLabel < out[j].CategoryLabel
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
