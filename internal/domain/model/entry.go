package model

import (
	"time"

	"github.com/okian/pirouette/internal/domain/category"
)

// Entry is one competitive routine.
type Entry struct {
	ID             int64
	EventID        int64
	OrganizationID int64
	StyleID        int64

	GroupSize  category.GroupSize
	AgeBracket category.AgeBracket
	Difficulty category.Difficulty

	Choreographer string
	Choreography  string
	GroupName     string

	// PerformerIDs is ordered as registered.
	PerformerIDs []int64
	// AudioSeconds is the music length when known.
	AudioSeconds *int

	DisplayOrder      *int
	GroupDisplayOrder *int
}

// Key builds the entry's category key from its style name.
func (e Entry) Key(style string) category.Key {
	return category.Key{
		Style:      style,
		GroupSize:  e.GroupSize,
		AgeBracket: e.AgeBracket,
		Difficulty: e.Difficulty,
	}
}

// GroupOrder returns the category position, 0 when unset.
func (e Entry) GroupOrder() int {
	if e.GroupDisplayOrder == nil {
		return 0
	}
	return *e.GroupDisplayOrder
}

// Ceremony is a non-competitive slot in the timeline.
type Ceremony struct {
	ID         int64
	EventID    int64
	Title      string
	Minutes    int
	AgeBracket category.AgeBracket
	// DisplayOrder is nil until the ceremony is placed.
	DisplayOrder *int
}

// ScoreRecord is one judge's marks for one entry.
type ScoreRecord struct {
	ID          int64
	EntryID     int64
	JudgeID     int64
	Technique   *float64
	Composition *float64
	Image       *float64
	ShowValue   *float64
	UpdatedAt   time.Time
}

// Judge scores one event.
type Judge struct {
	ID        int64
	EventID   int64
	FirstName string
	LastName  string
	Username  string
	// Cursor is the judge's current category position.
	Cursor int
}

// Diploma records one rendered certificate.
type Diploma struct {
	ID            int64
	EventID       int64
	EntryID       int64
	PerformerID   int64
	CategoryLabel string
	Rank          int
	Artifact      string
	CreatedAt     time.Time
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
