package seed

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/judging"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
)

var firstNames = []string{ //nolint:gochecknoglobals // name pool
	"Ana", "Lucija", "Mia", "Ema", "Sara", "Petra", "Nika", "Lana", "Iva", "Marta",
	"Luka", "Ivan", "Marko", "Filip", "Josip", "Karlo", "Matej", "Dora", "Tena", "Zoe",
}

var lastNames = []string{ //nolint:gochecknoglobals // name pool
	"Horvat", "Kovačević", "Babić", "Marić", "Jurić", "Novak", "Knežević", "Vuković", "Šarić", "Perić",
}

var seedSizes = []category.GroupSize{category.Solo, category.Duo, category.Trio, category.Group, category.Formation} //nolint:gochecknoglobals // fixed enumeration

// randInt returns a uniform int in [0, n) from crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randomMark returns a mark between 5 and 10 in half-point steps.
func randomMark() float64 {
	steps := int(markRange / markStep)
	return markMin + float64(randInt(steps+1))*markStep
}

// performerName returns a deterministic name for the i-th performer.
func performerName(i int) (string, string) {
	first := firstNames[i%len(firstNames)]
	last := lastNames[(i/len(firstNames))%len(lastNames)]
	if round := i / (len(firstNames) * len(lastNames)); round > 0 {
		last += " " + strconv.Itoa(round+1)
	}
	return first, last
}

// randomBirthDate spreads performers across every age bracket.
func randomBirthDate() time.Time {
	year := birthYearMin + randInt(birthYearRange)
	return time.Date(year, time.Month(1+randInt(12)), 1+randInt(28), 0, 0, 0, 0, time.UTC)
}

// planEntry draws one entry: a group size the pool can field, a style and
// a difficulty, and a distinct random set of performers.
func planEntry(orgID int64, styles []model.Style, performers []model.Performer, seq int) service.EntryInput {
	var sizes []category.GroupSize
	for _, g := range seedSizes {
		if r, _ := g.Range(); r.Min <= len(performers) {
			sizes = append(sizes, g)
		}
	}
	g := sizes[randInt(len(sizes))]
	r, _ := g.Range()
	n := r.Min + randInt(min(r.Max, len(performers))-r.Min+1)

	in := service.EntryInput{
		OrganizationID: orgID,
		StyleID:        styles[randInt(len(styles))].ID,
		GroupSize:      g,
		Difficulty:     category.Difficulties[randInt(len(category.Difficulties))],
		Choreography:   "Piece " + strconv.Itoa(seq+1),
		PerformerIDs:   pickPerformers(performers, n),
	}
	if g.RequiresGroupName() {
		in.GroupName = "Crew " + strconv.Itoa(seq+1)
	}
	return in
}

// pickPerformers returns n distinct performer ids via a partial shuffle.
func pickPerformers(performers []model.Performer, n int) []int64 {
	idx := make([]int, len(performers))
	for i := range idx {
		idx[i] = i
	}
	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		j := i + randInt(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, performers[idx[i]].ID)
	}
	return out
}

// randomMarks fills every criterion of the sheet for each row.
func randomMarks(criteria []scoring.Criterion, rows []service.SheetRow) map[int64]judging.Marks {
	out := make(map[int64]judging.Marks, len(rows))
	for _, row := range rows {
		var m judging.Marks
		for _, c := range criteria {
			v := randomMark()
			switch c {
			case scoring.Technique:
				m.Technique = &v
			case scoring.Composition:
				m.Composition = &v
			case scoring.Image:
				m.Image = &v
			case scoring.ShowValue:
				m.ShowValue = &v
			}
		}
		out[row.Entry.ID] = m
	}
	return out
}
