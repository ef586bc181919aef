// Package scoring turns per-judge marks into one trimmed-mean score per entry.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/pirouette/internal/domain/model"
)

// DefaultOpenStyle is the style whose entries are also marked on show value.
const DefaultOpenStyle = "Show Dance"

// minTrimmed is the number of values at which the extremes are dropped.
const minTrimmed = 3

// Criterion names one marked aspect of a performance.
type Criterion string

// Criteria.
const (
	Technique   Criterion = "technique"
	Composition Criterion = "composition"
	Image       Criterion = "image"
	ShowValue   Criterion = "show_value"
)

// Value returns the record's mark for c, nil when omitted.
func (c Criterion) Value(r model.ScoreRecord) *float64 {
	switch c {
	case Technique:
		return r.Technique
	case Composition:
		return r.Composition
	case Image:
		return r.Image
	case ShowValue:
		return r.ShowValue
	}
	return nil
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithOpenStyle sets the style that is also marked on show value.
func WithOpenStyle(style string) Option {
	return func(a *Aggregator) {
		if style != "" {
			a.openStyle = style
		}
	}
}

// Aggregator computes entry scores. It holds no mutable state and is safe
// for concurrent use.
type Aggregator struct {
	openStyle string
}

// NewAggregator creates an Aggregator with options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{openStyle: DefaultOpenStyle}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Criteria lists the criteria that count for an entry of the given style.
func (a *Aggregator) Criteria(style string) []Criterion {
	c := []Criterion{Technique, Composition, Image}
	if style == a.openStyle {
		c = append(c, ShowValue)
	}
	return c
}

// Aggregate returns the entry score and whether one exists. Marks of each
// criterion lose their single lowest and highest value when at least three
// are present; the rest are pooled across criteria and averaged. No
// remaining marks means the entry is unscored.
func (a *Aggregator) Aggregate(style string, records []model.ScoreRecord) (float64, bool) {
	b := a.Breakdown(style, records)
	return b.Score, b.Scored
}

// Breakdown explains how an entry's score was reached.
type Breakdown struct {
	Criteria []Criterion
	Rows     []Row
	// Discarded maps each criterion to the record indexes dropped as low and high.
	Discarded map[Criterion]Discard
	Total     float64
	Count     int
	Score     float64
	Scored    bool
}

// Row is one judge's submitted marks.
type Row struct {
	JudgeID int64
	Values  map[Criterion]*float64
}

// Discard names the records whose mark was dropped for one criterion.
type Discard struct {
	Low  int
	High int
}

type mark struct {
	value float64
	index int
}

// Breakdown computes the score together with the per-criterion discards.
// Among equal extremes the first record in input order is dropped as the
// low and the last as the high.
func (a *Aggregator) Breakdown(style string, records []model.ScoreRecord) Breakdown {
	b := Breakdown{
		Criteria:  a.Criteria(style),
		Rows:      make([]Row, len(records)),
		Discarded: make(map[Criterion]Discard),
	}
	for i, r := range records {
		b.Rows[i] = Row{JudgeID: r.JudgeID, Values: make(map[Criterion]*float64, len(b.Criteria))}
		for _, c := range b.Criteria {
			b.Rows[i].Values[c] = c.Value(r)
		}
	}

	for _, c := range b.Criteria {
		marks := make([]mark, 0, len(records))
		for i, r := range records {
			if v := c.Value(r); v != nil {
				marks = append(marks, mark{value: *v, index: i})
			}
		}
		sort.SliceStable(marks, func(x, y int) bool { return marks[x].value < marks[y].value })
		if len(marks) >= minTrimmed {
			b.Discarded[c] = Discard{Low: marks[0].index, High: marks[len(marks)-1].index}
			marks = marks[1 : len(marks)-1]
		}
		for _, m := range marks {
			b.Total += m.value
			b.Count++
		}
	}

	if b.Count > 0 {
		b.Score = Round2(b.Total / float64(b.Count))
		b.Scored = true
	}
	return b
}

// IsDiscarded reports whether record i lost its mark for c.
func (b Breakdown) IsDiscarded(c Criterion, i int) bool {
	d, ok := b.Discarded[c]
	return ok && (d.Low == i || d.High == i)
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
