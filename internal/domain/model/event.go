// Package model contains domain models passed between layers.
package model

import "time"

// StartListStatus is the publication state of an event's start list.
type StartListStatus string

// Start-list states.
const (
	StartListDraft       StartListStatus = "draft"
	StartListSaved       StartListStatus = "saved"
	StartListPublished   StartListStatus = "published"
	StartListUnpublished StartListStatus = "unpublished"
)

// Event is a competition day.
type Event struct {
	ID       int64
	Name     string
	Location string
	City     string
	Date     time.Time
	// StartTime is the "HH:MM" time the first slot begins; empty hides times.
	StartTime string

	StartList        StartListStatus
	RegistrationOpen bool
	MusicOpen        bool
	ResultsPublished bool
}

// StartListPublished reports whether the public may see the start list.
func (e Event) StartListPublished() bool { return e.StartList == StartListPublished }

// Style is a dance style offered at one event.
type Style struct {
	ID      int64
	EventID int64
	Name    string
}

// Organization is a club that registers performers.
type Organization struct {
	ID             int64
	Name           string
	City           string
	Country        string
	Email          string
	Representative string
	Confirmed      bool
}

// Performer is a dancer owned by an organization.
type Performer struct {
	ID             int64
	OrganizationID int64
	FirstName      string
	LastName       string
	BirthDate      time.Time
}

// FullName returns "first last".
func (p Performer) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
