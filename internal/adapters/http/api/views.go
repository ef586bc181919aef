package api

import (
	"time"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/internal/domain/startlist"
)

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

type eventView struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Location         string `json:"location,omitempty"`
	City             string `json:"city,omitempty"`
	Date             string `json:"date,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	StartList        string `json:"start_list"`
	RegistrationOpen bool   `json:"registration_open"`
	MusicOpen        bool   `json:"music_open"`
	ResultsPublished bool   `json:"results_published"`
	HasJudges        bool   `json:"has_judges"`
}

func newEventView(e model.Event) eventView {
	return eventView{
		ID: e.ID, Name: e.Name, Location: e.Location, City: e.City,
		Date: dateString(e.Date), StartTime: e.StartTime, StartList: string(e.StartList),
		RegistrationOpen: e.RegistrationOpen, MusicOpen: e.MusicOpen, ResultsPublished: e.ResultsPublished,
	}
}

type styleView struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
}

type ceremonyView struct {
	ID           int64  `json:"id"`
	EventID      int64  `json:"event_id"`
	Title        string `json:"title"`
	Minutes      int    `json:"minutes"`
	AgeBracket   string `json:"age_bracket,omitempty"`
	DisplayOrder *int   `json:"display_order"`
}

func newCeremonyView(c model.Ceremony) ceremonyView {
	return ceremonyView{
		ID: c.ID, EventID: c.EventID, Title: c.Title, Minutes: c.Minutes,
		AgeBracket: string(c.AgeBracket), DisplayOrder: c.DisplayOrder,
	}
}

type organizationView struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	City           string `json:"city,omitempty"`
	Country        string `json:"country,omitempty"`
	Email          string `json:"email,omitempty"`
	Representative string `json:"representative,omitempty"`
	Confirmed      bool   `json:"confirmed"`
}

func newOrganizationView(o model.Organization) organizationView {
	return organizationView{
		ID: o.ID, Name: o.Name, City: o.City, Country: o.Country,
		Email: o.Email, Representative: o.Representative, Confirmed: o.Confirmed,
	}
}

type performerView struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	BirthDate      string `json:"birth_date,omitempty"`
}

func newPerformerView(p model.Performer) performerView {
	return performerView{
		ID: p.ID, OrganizationID: p.OrganizationID, FirstName: p.FirstName, LastName: p.LastName,
		BirthDate: dateString(p.BirthDate),
	}
}

type entryView struct {
	ID                int64   `json:"id"`
	EventID           int64   `json:"event_id"`
	OrganizationID    int64   `json:"organization_id"`
	StyleID           int64   `json:"style_id"`
	GroupSize         string  `json:"group_size"`
	AgeBracket        string  `json:"age_bracket"`
	Difficulty        string  `json:"difficulty"`
	Choreographer     string  `json:"choreographer,omitempty"`
	Choreography      string  `json:"choreography,omitempty"`
	GroupName         string  `json:"group_name,omitempty"`
	PerformerIDs      []int64 `json:"performer_ids"`
	AudioSeconds      *int    `json:"audio_seconds"`
	DisplayOrder      *int    `json:"display_order"`
	GroupDisplayOrder *int    `json:"group_display_order"`
}

func newEntryView(e model.Entry) entryView {
	return entryView{
		ID: e.ID, EventID: e.EventID, OrganizationID: e.OrganizationID, StyleID: e.StyleID,
		GroupSize: string(e.GroupSize), AgeBracket: string(e.AgeBracket), Difficulty: string(e.Difficulty),
		Choreographer: e.Choreographer, Choreography: e.Choreography, GroupName: e.GroupName,
		PerformerIDs: e.PerformerIDs, AudioSeconds: e.AudioSeconds,
		DisplayOrder: e.DisplayOrder, GroupDisplayOrder: e.GroupDisplayOrder,
	}
}

func mapViews[T, V any](in []T, f func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

type keyView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func newKeyView(k category.Key) keyView {
	return keyView{Key: k.String(), Label: k.Label()}
}

type similarView struct {
	A        keyView `json:"a"`
	B        keyView `json:"b"`
	Distance int     `json:"distance"`
}

type summaryRowView struct {
	Organization *organizationView `json:"organization,omitempty"`
	Entries      map[string]int    `json:"entries"`
	Performers   int               `json:"performers"`
	Slots        int               `json:"slots"`
}

type summaryView struct {
	Organizations []summaryRowView `json:"organizations"`
	Totals        summaryRowView   `json:"totals"`
}

func newSummaryRow(s service.OrganizationSummary, withOrg bool) summaryRowView {
	row := summaryRowView{Entries: make(map[string]int, len(s.Entries)), Performers: s.Performers, Slots: s.Slots}
	for g, n := range s.Entries {
		row.Entries[string(g)] = n
	}
	if withOrg {
		o := newOrganizationView(s.Organization)
		row.Organization = &o
	}
	return row
}

type orderView struct {
	Status string `json:"status"`
	Slots  int    `json:"slots"`
}

type slotEntryView struct {
	ID             int64           `json:"id"`
	Category       keyView         `json:"category"`
	Choreographer  string          `json:"choreographer,omitempty"`
	Choreography   string          `json:"choreography,omitempty"`
	GroupName      string          `json:"group_name,omitempty"`
	DisplayName    string          `json:"display_name"`
	PerformerCount int             `json:"performer_count"`
	Performers     []performerView `json:"performers,omitempty"`
	Truncated      bool            `json:"truncated"`
	Organization   string          `json:"organization,omitempty"`
	City           string          `json:"city,omitempty"`
}

type slotView struct {
	Kind              string         `json:"kind"`
	ID                int64          `json:"id"`
	Row               int            `json:"row"`
	DisplayOrder      *int           `json:"display_order"`
	GroupDisplayOrder *int           `json:"group_display_order,omitempty"`
	Start             string         `json:"start,omitempty"`
	Seconds           int            `json:"seconds"`
	Entry             *slotEntryView `json:"entry,omitempty"`
	Ceremony          *ceremonyView  `json:"ceremony,omitempty"`
}

type timelineView struct {
	Slots        []slotView `json:"slots"`
	TotalSeconds int        `json:"total_seconds"`
	End          string     `json:"end,omitempty"`
}

func newTimelineView(tl startlist.Timeline) timelineView {
	out := timelineView{Slots: make([]slotView, len(tl.Slots)), TotalSeconds: int(tl.Total.Seconds()), End: tl.End}
	for i, s := range tl.Slots {
		v := slotView{
			Kind: string(s.Kind), ID: s.ID, Row: s.Row,
			DisplayOrder: s.DisplayOrder, GroupDisplayOrder: s.GroupDisplayOrder,
			Start: s.Start, Seconds: int(s.Duration.Seconds()),
		}
		if e := s.Entry; e != nil {
			v.Entry = &slotEntryView{
				ID: e.ID, Category: newKeyView(e.Key),
				Choreographer: e.Choreographer, Choreography: e.Choreography, GroupName: e.GroupName,
				DisplayName: e.DisplayName, PerformerCount: e.PerformerCount,
				Performers: mapViews(e.Performers, newPerformerView), Truncated: e.Truncated,
				Organization: e.Organization, City: e.City,
			}
		}
		if s.Ceremony != nil {
			c := newCeremonyView(*s.Ceremony)
			v.Ceremony = &c
		}
		out.Slots[i] = v
	}
	return out
}

type judgeView struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"event_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username"`
	Cursor    int    `json:"cursor"`
}

func newJudgeView(j model.Judge) judgeView {
	return judgeView{ID: j.ID, EventID: j.EventID, FirstName: j.FirstName, LastName: j.LastName, Username: j.Username, Cursor: j.Cursor}
}

type marksView struct {
	Technique   *float64 `json:"technique"`
	Composition *float64 `json:"composition"`
	Image       *float64 `json:"image"`
	ShowValue   *float64 `json:"show_value"`
}

type sheetRowView struct {
	Entry entryView  `json:"entry"`
	Prior *marksView `json:"prior"`
}

type sheetView struct {
	Judge     judgeView      `json:"judge"`
	Cursor    int            `json:"cursor"`
	Total     int            `json:"total"`
	Category  *keyView       `json:"category"`
	HasNext   bool           `json:"has_next"`
	HasPrev   bool           `json:"has_prev"`
	Criteria  []string       `json:"criteria"`
	Rows      []sheetRowView `json:"rows"`
	AllScored bool           `json:"all_scored"`
}

func newSheetView(sh service.Sheet) sheetView {
	v := sheetView{
		Judge: newJudgeView(sh.Judge), Cursor: sh.Cursor, Total: sh.Total,
		HasNext: sh.HasNext, HasPrev: sh.HasPrev, AllScored: sh.AllScored,
		Criteria: make([]string, len(sh.Criteria)), Rows: make([]sheetRowView, len(sh.Rows)),
	}
	if sh.HasCategory {
		k := newKeyView(sh.Category)
		v.Category = &k
	}
	for i, c := range sh.Criteria {
		v.Criteria[i] = string(c)
	}
	for i, r := range sh.Rows {
		row := sheetRowView{Entry: newEntryView(r.Entry)}
		if p := r.Prior; p != nil {
			row.Prior = &marksView{Technique: p.Technique, Composition: p.Composition, Image: p.Image, ShowValue: p.ShowValue}
		}
		v.Rows[i] = row
	}
	return v
}

type awardView struct {
	Rank         int       `json:"rank"`
	Score        float64   `json:"score"`
	Entry        entryView `json:"entry"`
	DisplayName  string    `json:"display_name"`
	Organization string    `json:"organization,omitempty"`
}

type awardCategoryView struct {
	Category          keyView     `json:"category"`
	GroupDisplayOrder int         `json:"group_display_order"`
	Awards            []awardView `json:"awards"`
}

func newAwardCategoryView(c service.AwardCategory) awardCategoryView {
	return awardCategoryView{
		Category:          keyView{Key: c.Key.String(), Label: c.Label},
		GroupDisplayOrder: c.GroupDisplayOrder,
		Awards: mapViews(c.Awards, func(a service.Award) awardView {
			return awardView{Rank: a.Rank, Score: a.Score, Entry: newEntryView(a.Entry), DisplayName: a.DisplayName, Organization: a.Organization}
		}),
	}
}

type breakdownRowView struct {
	JudgeID int64               `json:"judge_id"`
	Values  map[string]*float64 `json:"values"`
}

type discardView struct {
	LowJudgeID  int64 `json:"low_judge_id"`
	HighJudgeID int64 `json:"high_judge_id"`
}

type breakdownView struct {
	Criteria  []string               `json:"criteria"`
	Rows      []breakdownRowView     `json:"rows"`
	Discarded map[string]discardView `json:"discarded"`
	Total     float64                `json:"total"`
	Count     int                    `json:"count"`
	Score     float64                `json:"score"`
	Scored    bool                   `json:"scored"`
}

func newBreakdownView(b scoring.Breakdown) breakdownView {
	v := breakdownView{
		Criteria:  make([]string, len(b.Criteria)),
		Rows:      make([]breakdownRowView, len(b.Rows)),
		Discarded: make(map[string]discardView, len(b.Discarded)),
		Total:     b.Total, Count: b.Count, Score: b.Score, Scored: b.Scored,
	}
	for i, c := range b.Criteria {
		v.Criteria[i] = string(c)
	}
	for i, r := range b.Rows {
		row := breakdownRowView{JudgeID: r.JudgeID, Values: make(map[string]*float64, len(r.Values))}
		for c, val := range r.Values {
			row.Values[string(c)] = val
		}
		v.Rows[i] = row
	}
	for c, d := range b.Discarded {
		v.Discarded[string(c)] = discardView{LowJudgeID: b.Rows[d.Low].JudgeID, HighJudgeID: b.Rows[d.High].JudgeID}
	}
	return v
}

type diplomaItemView struct {
	EntryID     int64  `json:"entry_id"`
	PerformerID int64  `json:"performer_id"`
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Artifact    string `json:"artifact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type diplomaReportView struct {
	Category string            `json:"category"`
	Removed  int               `json:"removed"`
	Failed   int               `json:"failed"`
	Items    []diplomaItemView `json:"items"`
}

func newDiplomaReportView(r service.DiplomaReport) diplomaReportView {
	return diplomaReportView{
		Category: r.Label, Removed: r.Removed, Failed: r.Failed(),
		Items: mapViews(r.Items, func(it service.DiplomaItem) diplomaItemView {
			v := diplomaItemView{EntryID: it.EntryID, PerformerID: it.PerformerID, Rank: it.Rank, Name: it.Name, Artifact: it.Artifact}
			if it.Err != nil {
				v.Error = it.Err.Error()
			}
			return v
		}),
	}
}

type diplomaView struct {
	ID          int64     `json:"id"`
	EntryID     int64     `json:"entry_id"`
	PerformerID int64     `json:"performer_id"`
	Category    string    `json:"category"`
	Rank        int       `json:"rank"`
	Artifact    string    `json:"artifact"`
	CreatedAt   time.Time `json:"created_at"`
}

func newDiplomaView(d model.Diploma) diplomaView {
	return diplomaView{
		ID: d.ID, EntryID: d.EntryID, PerformerID: d.PerformerID,
		Category: d.CategoryLabel, Rank: d.Rank, Artifact: d.Artifact, CreatedAt: d.CreatedAt,
	}
}
