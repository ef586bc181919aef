// Package judging walks a judge through an event's categories and merges
// submitted marks into score records.
package judging

import (
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
)

// Action is a navigation request.
type Action string

// Actions. Stay keeps the cursor where it is.
const (
	Stay   Action = ""
	Next   Action = "next"
	Prev   Action = "prev"
	Review Action = "review"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Stay, Next, Prev, Review:
		return a, nil
	}
	return "", errs.Validation("judging", "unknown action %q", s)
}

// Session is a cursor over the ordered categories of an event.
type Session struct {
	categories []category.Key
	cursor     int
}

// NewSession places the cursor at pos, clamped to the category range.
func NewSession(categories []category.Key, pos int) *Session {
	s := &Session{categories: categories}
	s.cursor = s.clamp(pos)
	return s
}

func (s *Session) clamp(pos int) int {
	if pos >= len(s.categories) {
		pos = len(s.categories) - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// Len is the number of categories.
func (s *Session) Len() int { return len(s.categories) }

// Cursor is the current position.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the key under the cursor.
func (s *Session) Current() (category.Key, bool) {
	if len(s.categories) == 0 {
		return category.Key{}, false
	}
	return s.categories[s.cursor], true
}

// HasNext reports whether a later category exists.
func (s *Session) HasNext() bool { return s.cursor+1 < len(s.categories) }

// HasPrev reports whether an earlier category exists.
func (s *Session) HasPrev() bool { return s.cursor > 0 }

// Step is the outcome of one request.
type Step struct {
	Cursor int
	// AllScored is set when marks were submitted on the last category
	// without moving away from it.
	AllScored bool
}

// Apply moves the cursor. submitted tells whether marks were stored for
// the current category in the same request.
func (s *Session) Apply(submitted bool, a Action) Step {
	switch a {
	case Review:
		s.cursor = 0
		return Step{Cursor: s.cursor}
	case Next:
		if s.HasNext() {
			s.cursor++
			return Step{Cursor: s.cursor}
		}
	case Prev:
		if s.HasPrev() {
			s.cursor--
			return Step{Cursor: s.cursor}
		}
	}
	done := submitted && len(s.categories) > 0 && s.cursor == len(s.categories)-1
	return Step{Cursor: s.cursor, AllScored: done}
}

// Categories orders the distinct keys of entries by the group display
// order of each key's first entry.
func Categories(entries []model.Entry, key func(model.Entry) (category.Key, bool)) []category.Key {
	type item struct {
		entry model.Entry
		key   category.Key
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		if k, ok := key(e); ok {
			items = append(items, item{entry: e, key: k})
		}
	}
	buckets := category.Cluster(items,
		func(it item) category.Key { return it.key },
		func(it item) int { return it.entry.GroupOrder() })
	out := make([]category.Key, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}
