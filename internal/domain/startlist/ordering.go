package startlist

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
)

// Keyed pairs an entry with its resolved category key.
type Keyed struct {
	Entry model.Entry
	Key   category.Key
}

// Position is a new ordering for one entry.
type Position struct {
	DisplayOrder      int
	GroupDisplayOrder int
}

// Assignment is a complete ordering to be written in one batch.
type Assignment struct {
	Entries    map[int64]Position
	Ceremonies map[int64]int
}

// Len is the number of slots touched.
func (a Assignment) Len() int { return len(a.Entries) + len(a.Ceremonies) }

// Default orders categories by policy and entries within a category by id.
// display_order runs from 0 across all entries; group_display_order is the
// category's rank. Ceremonies are left alone. The result depends only on
// the entries' keys and ids, so repeated calls agree.
func Default(entries []Keyed, policy Policy) Assignment {
	byKey := make(map[category.Key][]model.Entry)
	keys := make([]category.Key, 0)
	for _, k := range entries {
		if _, ok := byKey[k.Key]; !ok {
			keys = append(keys, k.Key)
		}
		byKey[k.Key] = append(byKey[k.Key], k.Entry)
	}
	policy.Sort(keys)

	out := Assignment{Entries: make(map[int64]Position, len(entries))}
	pos := 0
	for rank, k := range keys {
		group := byKey[k]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		for _, e := range group {
			out.Entries[e.ID] = Position{DisplayOrder: pos, GroupDisplayOrder: rank}
			pos++
		}
	}
	return out
}

const ceremonyPrefix = "ceremony-"

// SlotID identifies an entry or a ceremony in a submitted order.
type SlotID struct {
	Ceremony bool
	ID       int64
}

func (s SlotID) String() string {
	if s.Ceremony {
		return ceremonyPrefix + strconv.FormatInt(s.ID, 10)
	}
	return strconv.FormatInt(s.ID, 10)
}

// ParseSlotID reads "17" as an entry and "ceremony-3" as a ceremony.
func ParseSlotID(s string) (SlotID, error) {
	raw, ceremony := strings.CutPrefix(s, ceremonyPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return SlotID{}, errs.Validation("startlist", "malformed slot id %q", s)
	}
	return SlotID{Ceremony: ceremony, ID: id}, nil
}

// ParseSlotIDs parses a submitted order.
func ParseSlotIDs(ids []string) ([]SlotID, error) {
	out := make([]SlotID, len(ids))
	for i, s := range ids {
		id, err := ParseSlotID(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// Manual assigns display_order by position in order and gives each
// category the index at which it first appears among the listed entries.
// Every id must belong to the event and appear once; otherwise nothing is
// assigned. Slots not listed keep their current order.
func Manual(order []SlotID, entries map[int64]Keyed, ceremonies map[int64]model.Ceremony) (Assignment, error) {
	out := Assignment{Entries: make(map[int64]Position), Ceremonies: make(map[int64]int)}
	seen := make(map[SlotID]bool, len(order))
	groups := make(map[category.Key]int)

	for pos, id := range order {
		if seen[id] {
			return Assignment{}, errs.Validation("startlist", "slot %s listed twice", id)
		}
		seen[id] = true

		if id.Ceremony {
			if _, ok := ceremonies[id.ID]; !ok {
				return Assignment{}, errs.NotFound("startlist", "ceremony %d not found", id.ID)
			}
			out.Ceremonies[id.ID] = pos
			continue
		}
		k, ok := entries[id.ID]
		if !ok {
			return Assignment{}, errs.NotFound("startlist", "entry %d not found", id.ID)
		}
		g, ok := groups[k.Key]
		if !ok {
			g = len(groups)
			groups[k.Key] = g
		}
		out.Entries[id.ID] = Position{DisplayOrder: pos, GroupDisplayOrder: g}
	}
	return out, nil
}
