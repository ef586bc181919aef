package seed

import "time"

// Defaults applied to zero Config fields.
const (
	DefaultPerformers = 40
	DefaultEntries    = 25
	DefaultJudges     = 3
	DefaultWorkers    = 4
	DefaultEventName  = "Seeded Cup"
)

// Mark generation bounds.
const (
	markMin   = 5.0
	markRange = 5.0
	markStep  = 0.5
)

// Birth years of generated performers.
const (
	birthYearMin   = 1995
	birthYearRange = 25
)

const percentageMultiplier = 100

// maxSheetSteps bounds a judge's walk through the sheet.
const maxSheetSteps = 10000

var defaultStyles = []string{"Jazz", "Contemporary", "Hip Hop", "Show Dance"} //nolint:gochecknoglobals // fixed defaults

var seedDate = time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // fixed default
