// Package classify derives an entry's age bracket from its performers and
// enforces group-size cardinality.
package classify

import (
	"math"
	"time"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
)

// Result is the outcome of age classification.
type Result struct {
	Bracket category.AgeBracket
	// MeanAge is rounded to one decimal; valid only when HasMean is set.
	MeanAge float64
	HasMean bool
}

// thresholds are inclusive upper bounds on the mean age.
var thresholds = []struct { //nolint:gochecknoglobals // fixed table
	max     float64
	bracket category.AgeBracket
}{
	{6, category.Baby},
	{8, category.MiniKids},
	{11, category.Kids},
	{14, category.Teen},
	{17, category.Youth},
}

// Age returns whole years between birth and asOf. A birthday not yet
// reached in asOf's year counts one year less.
func Age(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

// Bracket maps a mean age to its bracket.
func Bracket(mean float64) category.AgeBracket {
	for _, t := range thresholds {
		if mean <= t.max {
			return t.bracket
		}
	}
	return category.Adult
}

// Classify computes the bracket for a set of birth dates as of asOf (today
// when zero). Zero birth dates are ignored; with none left the result is
// Adult without a mean.
func Classify(births []time.Time, asOf time.Time) Result {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	sum, n := 0, 0
	for _, b := range births {
		if b.IsZero() {
			continue
		}
		sum += Age(b, asOf)
		n++
	}
	if n == 0 {
		return Result{Bracket: category.Adult}
	}
	mean := float64(sum) / float64(n)
	return Result{
		Bracket: Bracket(mean),
		MeanAge: math.Round(mean*10) / 10,
		HasMean: true,
	}
}

// CheckCardinality rejects performer counts outside the range of g.
func CheckCardinality(g category.GroupSize, count int) error {
	r, ok := g.Range()
	if !ok {
		return errs.Validation("classify", "unknown group size %q", g)
	}
	if count < r.Min || count > r.Max {
		return errs.Validation("classify", "%s requires %d-%d performers, got %d", g, r.Min, r.Max, count)
	}
	return nil
}

// CheckGroup validates the performer count and, for large classes, that a
// group name is present.
func CheckGroup(g category.GroupSize, count int, groupName string) error {
	if err := CheckCardinality(g, count); err != nil {
		return err
	}
	if g.RequiresGroupName() && groupName == "" {
		return errs.Validation("classify", "%s entries require a group name", g)
	}
	return nil
}
