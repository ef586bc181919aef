// Package ranking orders scored entries within their categories and
// assigns placements.
//
// Entries with equal scores keep the order they were supplied in; there is
// no secondary tie-break and tied entries still receive distinct,
// consecutive placements.
package ranking

import (
	"sort"
	"strings"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
)

// Candidate is one entry offered for ranking.
type Candidate struct {
	Entry  model.Entry
	Key    category.Key
	Score  float64
	Scored bool
}

// Placement is a ranked entry.
type Placement struct {
	Entry model.Entry
	Rank  int
	Score float64
}

// Category is one ranked category.
type Category struct {
	Key               category.Key
	GroupDisplayOrder int
	Placements        []Placement
}

// Place ranks candidates of a single category. Unscored candidates are
// left out.
func Place(candidates []Candidate) []Placement {
	scored := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Scored {
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	out := make([]Placement, len(scored))
	for i, c := range scored {
		out[i] = Placement{Entry: c.Entry, Rank: i + 1, Score: c.Score}
	}
	return out
}

// Rank groups candidates into categories and ranks each one. Categories
// follow the group display order of their first candidate (0 when unset);
// categories without a scored entry are omitted.
func Rank(candidates []Candidate) []Category {
	buckets := category.Cluster(candidates,
		func(c Candidate) category.Key { return c.Key },
		func(c Candidate) int { return c.Entry.GroupOrder() })

	out := make([]Category, 0, len(buckets))
	for _, b := range buckets {
		placements := Place(b.Items)
		if len(placements) == 0 {
			continue
		}
		out = append(out, Category{Key: b.Key, GroupDisplayOrder: b.Order, Placements: placements})
	}
	return out
}

// Find returns the ranked category with key k.
func Find(categories []Category, k category.Key) (Category, bool) {
	for _, c := range categories {
		if c.Key == k {
			return c, true
		}
	}
	return Category{}, false
}

// groupNameThreshold is the performer count from which a set group name
// replaces individual names.
const groupNameThreshold = 4

// DisplayName is how an entry is announced: its group name when it has at
// least four performers and one is set, else the performers' full names.
func DisplayName(groupName string, performers []model.Performer) string {
	if groupName != "" && len(performers) >= groupNameThreshold {
		return groupName
	}
	names := make([]string, len(performers))
	for i, p := range performers {
		names[i] = p.FullName()
	}
	return strings.Join(names, ", ")
}

// RecipientName is the name printed on one performer's certificate.
func RecipientName(groupName string, performerCount int, p model.Performer) string {
	if groupName != "" && performerCount >= groupNameThreshold {
		return groupName
	}
	return p.FullName()
}
