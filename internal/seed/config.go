// Package seed fills an event with a plausible competition: an organization,
// performers, random entries, judges and their marks. It drives the public
// service operations only, so every rule a real user hits applies.
package seed

import "time"

// Config holds configuration for one seeding run.
type Config struct {
	EventID    int64    // Event to fill; 0 creates a new one
	EventName  string   // Name of a created event
	Styles     []string // Styles added to a created event
	Performers int      // Performers in the seeded organization
	Entries    int      // Entries to register
	Judges     int      // Judges who mark every entry
	Workers    int      // Concurrent registrations and judges
	Publish    bool     // Publish the start list and results afterwards
	Verbose    bool     // Log every entry and award
}

// Stats holds run statistics.
type Stats struct {
	EntriesPlanned    int
	EntriesRegistered int
	EntriesRejected   int
	MarksSubmitted    int
	Categories        int
	Awards            int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Result reports what a run created.
type Result struct {
	EventID        int64
	OrganizationID int64
	Stats          Stats
}
