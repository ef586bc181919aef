// Package repository persists events, entries, scores and orderings.
package repository

import (
	"context"

	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
)

// Store provides read/write access to competition state. Implementations
// enforce one score record per (entry, judge), unique style names per
// event and unique judge usernames, and cascade deletes from events to
// entries to score records and performer links.
type Store interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, id int64) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	// UpdateEvent rewrites the event's descriptive fields, flags and
	// start-list status.
	UpdateEvent(ctx context.Context, e model.Event) error
	DeleteEvent(ctx context.Context, id int64) error

	CreateStyle(ctx context.Context, s *model.Style) error
	ListStyles(ctx context.Context, eventID int64) ([]model.Style, error)

	CreateOrganization(ctx context.Context, o *model.Organization) error
	GetOrganization(ctx context.Context, id int64) (model.Organization, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	UpdateOrganization(ctx context.Context, o model.Organization) error

	CreatePerformer(ctx context.Context, p *model.Performer) error
	// GetPerformers returns performers in the order of ids.
	GetPerformers(ctx context.Context, ids []int64) ([]model.Performer, error)
	ListPerformers(ctx context.Context, organizationID int64) ([]model.Performer, error)

	CreateEntry(ctx context.Context, e *model.Entry) error
	// UpdateEntry rewrites the entry including its performer links.
	UpdateEntry(ctx context.Context, e model.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	GetEntry(ctx context.Context, id int64) (model.Entry, error)
	// ListEntries returns the event's entries ordered by id.
	ListEntries(ctx context.Context, eventID int64) ([]model.Entry, error)
	// MergeEntries gives primary the performer list and deletes the
	// duplicates with their scores, atomically.
	MergeEntries(ctx context.Context, primary int64, performerIDs []int64, duplicates []int64) error

	CreateCeremony(ctx context.Context, c *model.Ceremony) error
	ListCeremonies(ctx context.Context, eventID int64) ([]model.Ceremony, error)
	DeleteCeremony(ctx context.Context, id int64) error

	// ApplyOrdering writes an assignment and the resulting start-list
	// status in one transaction.
	ApplyOrdering(ctx context.Context, eventID int64, a startlist.Assignment, status model.StartListStatus) error

	// UpsertScores writes records keyed by (entry, judge) in one transaction.
	UpsertScores(ctx context.Context, records []model.ScoreRecord) error
	ListScores(ctx context.Context, eventID int64) ([]model.ScoreRecord, error)
	ListEntryScores(ctx context.Context, entryID int64) ([]model.ScoreRecord, error)

	CreateJudge(ctx context.Context, j *model.Judge) error
	GetJudge(ctx context.Context, id int64) (model.Judge, error)
	ListJudges(ctx context.Context, eventID int64) ([]model.Judge, error)
	SetJudgeCursor(ctx context.Context, id int64, cursor int) error
	DeleteJudge(ctx context.Context, id int64) error

	SetHighlight(ctx context.Context, eventID int64, key string) error
	GetHighlight(ctx context.Context, eventID int64) (string, error)

	// DeleteDiplomas removes and returns the event's diplomas for a label.
	DeleteDiplomas(ctx context.Context, eventID int64, label string) ([]model.Diploma, error)
	CreateDiploma(ctx context.Context, d *model.Diploma) error
	// ListDiplomas filters by label unless it is empty.
	ListDiplomas(ctx context.Context, eventID int64, label string) ([]model.Diploma, error)

	Close() error
}
