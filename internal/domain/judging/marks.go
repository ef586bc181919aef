package judging

import (
	"math"

	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
)

// Mark bounds follow the stored precision: four digits, two of them
// decimals. The scale itself is the panel's choice.
const (
	MinMark      = 0
	MaxMark      = 99.99
	MarkDecimals = 2
)

// Marks are the values a judge entered for one entry. Nil means omitted.
type Marks struct {
	Technique   *float64
	Composition *float64
	Image       *float64
	ShowValue   *float64
}

// Empty reports whether nothing was entered.
func (m Marks) Empty() bool {
	return m.Technique == nil && m.Composition == nil && m.Image == nil && m.ShowValue == nil
}

// Restrict drops marks for criteria that do not count.
func (m Marks) Restrict(criteria []scoring.Criterion) Marks {
	var out Marks
	for _, c := range criteria {
		switch c {
		case scoring.Technique:
			out.Technique = m.Technique
		case scoring.Composition:
			out.Composition = m.Composition
		case scoring.Image:
			out.Image = m.Image
		case scoring.ShowValue:
			out.ShowValue = m.ShowValue
		}
	}
	return out
}

// Validate checks that every entered mark lies within bounds.
func (m Marks) Validate() error {
	for _, v := range []*float64{m.Technique, m.Composition, m.Image, m.ShowValue} {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || *v < MinMark || *v > MaxMark {
			return errs.Validation("judging", "mark %g outside %d-%.2f", *v, MinMark, MaxMark)
		}
		if !hasPrecision(*v) {
			return errs.Validation("judging", "mark %g has more than %d decimals", *v, MarkDecimals)
		}
	}
	return nil
}

func hasPrecision(v float64) bool {
	scaled := v * math.Pow10(MarkDecimals)
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

// Merge overlays entered marks on a prior record; omitted marks keep their
// previous value. The second result is false when nothing was entered and
// no record should be written.
func Merge(prior *model.ScoreRecord, entryID, judgeID int64, m Marks) (model.ScoreRecord, bool) {
	if m.Empty() {
		return model.ScoreRecord{}, false
	}
	var r model.ScoreRecord
	if prior != nil {
		r = *prior
	}
	r.EntryID, r.JudgeID = entryID, judgeID
	if m.Technique != nil {
		r.Technique = m.Technique
	}
	if m.Composition != nil {
		r.Composition = m.Composition
	}
	if m.Image != nil {
		r.Image = m.Image
	}
	if m.ShowValue != nil {
		r.ShowValue = m.ShowValue
	}
	return r, true
}
