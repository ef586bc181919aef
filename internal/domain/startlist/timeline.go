package startlist

import (
	"sort"
	"time"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/ranking"
)

// Default run times by group-size class, used when the music length is
// unknown.
const (
	smallGroupDuration = 135 * time.Second
	groupDuration      = 180 * time.Second
	largeDuration      = 240 * time.Second
	youngBuffer        = 60 * time.Second
	standardBuffer     = 30 * time.Second
	clockLayout        = "15:04"
	truncateAbove      = 3
)

// EntryDuration estimates how long an entry occupies the stage: its music
// length, or a class default, plus a changeover buffer.
func EntryDuration(e model.Entry) time.Duration {
	var d time.Duration
	switch {
	case e.AudioSeconds != nil && *e.AudioSeconds > 0:
		d = time.Duration(*e.AudioSeconds) * time.Second
	case e.GroupSize == category.Solo || e.GroupSize == category.Duo || e.GroupSize == category.Trio:
		d = smallGroupDuration
	case e.GroupSize == category.Group || e.GroupSize == category.Formation:
		d = groupDuration
	default:
		d = largeDuration
	}
	// The longer buffer is keyed on tags that are never group-size values,
	// so every entry currently gets the standard buffer.
	switch string(e.GroupSize) {
	case "Baby", "Mini":
		d += youngBuffer
	default:
		d += standardBuffer
	}
	return d
}

// CeremonyDuration is the declared length of a ceremony.
func CeremonyDuration(c model.Ceremony) time.Duration {
	return time.Duration(c.Minutes) * time.Minute
}

// SlotKind tells entries and ceremonies apart.
type SlotKind string

// Slot kinds.
const (
	SlotEntry    SlotKind = "entry"
	SlotCeremony SlotKind = "ceremony"
)

// EntrySource is an entry with everything needed to show it.
type EntrySource struct {
	Entry        model.Entry
	Key          category.Key
	Performers   []model.Performer
	Organization string
	City         string
}

// EntryView is the viewer-facing detail of an entry.
type EntryView struct {
	ID             int64
	Key            category.Key
	Choreographer  string
	Choreography   string
	GroupName      string
	DisplayName    string
	PerformerCount int
	// Performers is empty when Truncated is set.
	Performers   []model.Performer
	Truncated    bool
	Organization string
	City         string
}

// Slot is one position in the timeline.
type Slot struct {
	Kind              SlotKind
	ID                int64
	Row               int
	DisplayOrder      *int
	GroupDisplayOrder *int
	// Start is "HH:MM" or empty when the event has no start time.
	Start    string
	Duration time.Duration
	Entry    *EntryView
	Ceremony *model.Ceremony
}

// Timeline is the ordered sequence of slots.
type Timeline struct {
	Slots []Slot
	Total time.Duration
	// End is the clock after the last slot, empty without a start time.
	End string
}

// Viewer controls how much detail a timeline shows.
type Viewer struct {
	Superuser bool
}

// BuildTimeline orders entries and ceremonies by display_order, nulls
// last; at equal order ceremonies come first, then lower ids. When start
// is set ("HH:MM"), each slot is stamped with the running clock.
func BuildTimeline(start string, entries []EntrySource, ceremonies []model.Ceremony, viewer Viewer) (Timeline, error) {
	var clock time.Time
	hasClock := start != ""
	if hasClock {
		t, err := time.Parse(clockLayout, start)
		if err != nil {
			return Timeline{}, errs.Validation("startlist", "malformed start time %q", start)
		}
		clock = t
	}

	slots := make([]Slot, 0, len(entries)+len(ceremonies))
	for _, src := range entries {
		slots = append(slots, Slot{
			Kind:              SlotEntry,
			ID:                src.Entry.ID,
			DisplayOrder:      src.Entry.DisplayOrder,
			GroupDisplayOrder: src.Entry.GroupDisplayOrder,
			Duration:          EntryDuration(src.Entry),
			Entry:             view(src, viewer),
		})
	}
	for i := range ceremonies {
		c := ceremonies[i]
		slots = append(slots, Slot{
			Kind:         SlotCeremony,
			ID:           c.ID,
			DisplayOrder: c.DisplayOrder,
			Duration:     CeremonyDuration(c),
			Ceremony:     &c,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slotLess(slots[i], slots[j]) })

	tl := Timeline{Slots: slots}
	for i := range tl.Slots {
		s := &tl.Slots[i]
		s.Row = i + 1
		if hasClock {
			s.Start = clock.Format(clockLayout)
			clock = clock.Add(s.Duration)
		}
		tl.Total += s.Duration
	}
	if hasClock {
		tl.End = clock.Format(clockLayout)
	}
	return tl, nil
}

func slotLess(a, b Slot) bool {
	switch {
	case a.DisplayOrder == nil && b.DisplayOrder != nil:
		return false
	case a.DisplayOrder != nil && b.DisplayOrder == nil:
		return true
	case a.DisplayOrder != nil && *a.DisplayOrder != *b.DisplayOrder:
		return *a.DisplayOrder < *b.DisplayOrder
	}
	if a.Kind != b.Kind {
		return a.Kind == SlotCeremony
	}
	return a.ID < b.ID
}

func view(src EntrySource, viewer Viewer) *EntryView {
	e := src.Entry
	v := &EntryView{
		ID:             e.ID,
		Key:            src.Key,
		Choreographer:  e.Choreographer,
		Choreography:   e.Choreography,
		GroupName:      e.GroupName,
		DisplayName:    ranking.DisplayName(e.GroupName, src.Performers),
		PerformerCount: len(src.Performers),
		Performers:     src.Performers,
		Organization:   src.Organization,
		City:           src.City,
	}
	if !viewer.Superuser && len(src.Performers) > truncateAbove && e.GroupName != "" {
		v.Performers = nil
		v.Truncated = true
	}
	return v
}
