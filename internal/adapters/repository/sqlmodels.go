package repository

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
)

type eventRow struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID               int64     `bun:"id,pk,autoincrement"`
	Name             string    `bun:"name,notnull"`
	Location         string    `bun:"location"`
	City             string    `bun:"city"`
	Date             time.Time `bun:"date"`
	StartTime        string    `bun:"start_time"`
	StartList        string    `bun:"start_list,notnull"`
	RegistrationOpen bool      `bun:"registration_open,notnull"`
	MusicOpen        bool      `bun:"music_open,notnull"`
	ResultsPublished bool      `bun:"results_published,notnull"`
}

func (r eventRow) toModel() model.Event {
	return model.Event{
		ID: r.ID, Name: r.Name, Location: r.Location, City: r.City, Date: r.Date, StartTime: r.StartTime,
		StartList:        model.StartListStatus(r.StartList),
		RegistrationOpen: r.RegistrationOpen,
		MusicOpen:        r.MusicOpen,
		ResultsPublished: r.ResultsPublished,
	}
}

func eventFromModel(e model.Event) *eventRow {
	return &eventRow{
		ID: e.ID, Name: e.Name, Location: e.Location, City: e.City, Date: e.Date, StartTime: e.StartTime,
		StartList:        string(e.StartList),
		RegistrationOpen: e.RegistrationOpen,
		MusicOpen:        e.MusicOpen,
		ResultsPublished: e.ResultsPublished,
	}
}

type styleRow struct {
	bun.BaseModel `bun:"table:styles,alias:st"`

	ID      int64  `bun:"id,pk,autoincrement"`
	EventID int64  `bun:"event_id,notnull,unique:styles_event_name"`
	Name    string `bun:"name,notnull,unique:styles_event_name"`
}

type organizationRow struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`

	ID             int64  `bun:"id,pk,autoincrement"`
	Name           string `bun:"name,notnull"`
	City           string `bun:"city"`
	Country        string `bun:"country"`
	Email          string `bun:"email"`
	Representative string `bun:"representative"`
	Confirmed      bool   `bun:"confirmed,notnull"`
}

type performerRow struct {
	bun.BaseModel `bun:"table:performers,alias:pf"`

	ID             int64     `bun:"id,pk,autoincrement"`
	OrganizationID int64     `bun:"organization_id,notnull"`
	FirstName      string    `bun:"first_name,notnull"`
	LastName       string    `bun:"last_name,notnull"`
	BirthDate      time.Time `bun:"birth_date"`
}

type entryRow struct {
	bun.BaseModel `bun:"table:entries,alias:en"`

	ID                int64  `bun:"id,pk,autoincrement"`
	EventID           int64  `bun:"event_id,notnull"`
	OrganizationID    int64  `bun:"organization_id,notnull"`
	StyleID           int64  `bun:"style_id,notnull"`
	GroupSize         string `bun:"group_size,notnull"`
	AgeBracket        string `bun:"age_bracket,notnull"`
	Difficulty        string `bun:"difficulty,notnull"`
	Choreographer     string `bun:"choreographer"`
	Choreography      string `bun:"choreography"`
	GroupName         string `bun:"group_name"`
	AudioSeconds      *int   `bun:"audio_seconds"`
	DisplayOrder      *int   `bun:"display_order"`
	GroupDisplayOrder *int   `bun:"group_display_order"`
}

func (r entryRow) toModel(performers []int64) model.Entry {
	return model.Entry{
		ID: r.ID, EventID: r.EventID, OrganizationID: r.OrganizationID, StyleID: r.StyleID,
		GroupSize:         category.GroupSize(r.GroupSize),
		AgeBracket:        category.AgeBracket(r.AgeBracket),
		Difficulty:        category.Difficulty(r.Difficulty),
		Choreographer:     r.Choreographer,
		Choreography:      r.Choreography,
		GroupName:         r.GroupName,
		PerformerIDs:      performers,
		AudioSeconds:      r.AudioSeconds,
		DisplayOrder:      r.DisplayOrder,
		GroupDisplayOrder: r.GroupDisplayOrder,
	}
}

func entryFromModel(e model.Entry) *entryRow {
	return &entryRow{
		ID: e.ID, EventID: e.EventID, OrganizationID: e.OrganizationID, StyleID: e.StyleID,
		GroupSize:         string(e.GroupSize),
		AgeBracket:        string(e.AgeBracket),
		Difficulty:        string(e.Difficulty),
		Choreographer:     e.Choreographer,
		Choreography:      e.Choreography,
		GroupName:         e.GroupName,
		AudioSeconds:      e.AudioSeconds,
		DisplayOrder:      e.DisplayOrder,
		GroupDisplayOrder: e.GroupDisplayOrder,
	}
}

type entryPerformerRow struct {
	bun.BaseModel `bun:"table:entry_performers,alias:ep"`

	EntryID     int64 `bun:"entry_id,pk"`
	PerformerID int64 `bun:"performer_id,pk"`
	Position    int   `bun:"position,notnull"`
}

type ceremonyRow struct {
	bun.BaseModel `bun:"table:ceremonies,alias:cer"`

	ID           int64  `bun:"id,pk,autoincrement"`
	EventID      int64  `bun:"event_id,notnull"`
	Title        string `bun:"title,notnull"`
	Minutes      int    `bun:"minutes,notnull"`
	AgeBracket   string `bun:"age_bracket"`
	DisplayOrder *int   `bun:"display_order"`
}

func (r ceremonyRow) toModel() model.Ceremony {
	return model.Ceremony{
		ID: r.ID, EventID: r.EventID, Title: r.Title, Minutes: r.Minutes,
		AgeBracket:   category.AgeBracket(r.AgeBracket),
		DisplayOrder: r.DisplayOrder,
	}
}

type scoreRow struct {
	bun.BaseModel `bun:"table:scores,alias:sc"`

	ID          int64     `bun:"id,pk,autoincrement"`
	EntryID     int64     `bun:"entry_id,notnull,unique:scores_entry_judge"`
	JudgeID     int64     `bun:"judge_id,notnull,unique:scores_entry_judge"`
	Technique   *float64  `bun:"technique"`
	Composition *float64  `bun:"composition"`
	Image       *float64  `bun:"image"`
	ShowValue   *float64  `bun:"show_value"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (r scoreRow) toModel() model.ScoreRecord {
	return model.ScoreRecord{
		ID: r.ID, EntryID: r.EntryID, JudgeID: r.JudgeID,
		Technique: r.Technique, Composition: r.Composition, Image: r.Image, ShowValue: r.ShowValue,
		UpdatedAt: r.UpdatedAt,
	}
}

type judgeRow struct {
	bun.BaseModel `bun:"table:judges,alias:jd"`

	ID        int64  `bun:"id,pk,autoincrement"`
	EventID   int64  `bun:"event_id,notnull"`
	FirstName string `bun:"first_name,notnull"`
	LastName  string `bun:"last_name"`
	Username  string `bun:"username,notnull,unique"`
	Cursor    int    `bun:"category_cursor,notnull"`
}

func (r judgeRow) toModel() model.Judge {
	return model.Judge{ID: r.ID, EventID: r.EventID, FirstName: r.FirstName, LastName: r.LastName, Username: r.Username, Cursor: r.Cursor}
}

type playbackRow struct {
	bun.BaseModel `bun:"table:playback_states,alias:pb"`

	EventID      int64  `bun:"event_id,pk"`
	HighlightKey string `bun:"highlight_key"`
}

type diplomaRow struct {
	bun.BaseModel `bun:"table:diplomas,alias:dp"`

	ID            int64     `bun:"id,pk,autoincrement"`
	EventID       int64     `bun:"event_id,notnull"`
	EntryID       int64     `bun:"entry_id,notnull"`
	PerformerID   int64     `bun:"performer_id,notnull"`
	CategoryLabel string    `bun:"category_label,notnull"`
	Rank          int       `bun:"placement,notnull"`
	Artifact      string    `bun:"artifact"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (r diplomaRow) toModel() model.Diploma {
	return model.Diploma{
		ID: r.ID, EventID: r.EventID, EntryID: r.EntryID, PerformerID: r.PerformerID,
		CategoryLabel: r.CategoryLabel, Rank: r.Rank, Artifact: r.Artifact, CreatedAt: r.CreatedAt,
	}
}

func tables() []any {
	return []any{
		(*eventRow)(nil),
		(*styleRow)(nil),
		(*organizationRow)(nil),
		(*performerRow)(nil),
		(*entryRow)(nil),
		(*entryPerformerRow)(nil),
		(*ceremonyRow)(nil),
		(*scoreRow)(nil),
		(*judgeRow)(nil),
		(*playbackRow)(nil),
		(*diplomaRow)(nil),
	}
}
