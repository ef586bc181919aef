// Package startlist orders entries and ceremonies into an event timeline
// and tracks publication of the result.
package startlist

import (
	"sort"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
)

// Field is one component of the category sort key.
type Field string

// Sort fields.
const (
	FieldAge        Field = "age"
	FieldGroupSize  Field = "group_size"
	FieldStyle      Field = "style"
	FieldDifficulty Field = "difficulty"
)

// Preset policy names.
const (
	PolicyAgeFirst        = "age-first"
	PolicyDifficultyFirst = "difficulty-first"
)

// Policy decides the default order of categories. Each field compares by
// its index in a fixed list; values missing from the list sort after every
// listed value. Remaining ties fall back to the key text.
type Policy struct {
	Fields []Field
	// DifficultyDesc puts later difficulty codes first.
	DifficultyDesc bool
	// Styles is the style presentation order.
	Styles []string
}

// AgeFirst orders by age bracket, group size, style, then difficulty.
func AgeFirst(styles []string) Policy {
	return Policy{Fields: []Field{FieldAge, FieldGroupSize, FieldStyle, FieldDifficulty}, Styles: styles}
}

// DifficultyFirst orders by difficulty, style, group size, then age bracket.
func DifficultyFirst(styles []string) Policy {
	return Policy{Fields: []Field{FieldDifficulty, FieldStyle, FieldGroupSize, FieldAge}, Styles: styles}
}

// NewPolicy resolves a preset by name. difficulty is "asc" (A first, the
// default) or "desc".
func NewPolicy(name string, styles []string, difficulty string) (Policy, error) {
	var p Policy
	switch name {
	case "", PolicyAgeFirst:
		p = AgeFirst(styles)
	case PolicyDifficultyFirst:
		p = DifficultyFirst(styles)
	default:
		return Policy{}, errs.Validation("startlist", "unknown sort policy %q", name)
	}
	switch difficulty {
	case "", "asc":
	case "desc":
		p.DifficultyDesc = true
	default:
		return Policy{}, errs.Validation("startlist", "unknown difficulty direction %q", difficulty)
	}
	return p, nil
}

func (p Policy) index(f Field, k category.Key) int {
	switch f {
	case FieldAge:
		return k.AgeBracket.Index()
	case FieldGroupSize:
		return k.GroupSize.Index()
	case FieldStyle:
		for i, s := range p.Styles {
			if s == k.Style {
				return i
			}
		}
		return len(p.Styles)
	case FieldDifficulty:
		i := k.Difficulty.Index()
		if p.DifficultyDesc && i < len(category.Difficulties) {
			return len(category.Difficulties) - 1 - i
		}
		return i
	}
	return 0
}

// Less reports whether category a runs before b.
func (p Policy) Less(a, b category.Key) bool {
	for _, f := range p.Fields {
		ia, ib := p.index(f, a), p.index(f, b)
		if ia != ib {
			return ia < ib
		}
	}
	return a.String() < b.String()
}

// Sort orders keys in place.
func (p Policy) Sort(keys []category.Key) {
	sort.SliceStable(keys, func(i, j int) bool { return p.Less(keys[i], keys[j]) })
}
