// Package category defines the composite key entries are grouped by and the
// enumerations it is built from.
//
// Keys compare exactly: no trimming or case folding is applied, so
// "Jazz" and "jazz " are different categories. Lint reports such near
// duplicates without changing grouping.
package category

import (
	"strings"

	"github.com/okian/pirouette/internal/domain/errs"
)

// GroupSize is the group-size class of an entry.
type GroupSize string

// Group-size classes in presentation order.
const (
	Solo       GroupSize = "Solo"
	Duo        GroupSize = "Duo"
	Trio       GroupSize = "Trio"
	Group      GroupSize = "Group"
	Formation  GroupSize = "Formation"
	Production GroupSize = "Production"
)

// GroupSizes lists every class in presentation order.
var GroupSizes = []GroupSize{Solo, Duo, Trio, Group, Formation, Production} //nolint:gochecknoglobals // fixed enumeration

// Range is an inclusive performer-count bound.
type Range struct {
	Min int
	Max int
}

var cardinality = map[GroupSize]Range{ //nolint:gochecknoglobals // fixed table
	Solo:       {1, 1},
	Duo:        {2, 2},
	Trio:       {3, 3},
	Group:      {4, 9},
	Formation:  {10, 29},
	Production: {30, 200},
}

// Range returns the performer-count bound of g.
func (g GroupSize) Range() (Range, bool) {
	r, ok := cardinality[g]
	return r, ok
}

// Valid reports whether g is a known class.
func (g GroupSize) Valid() bool {
	_, ok := cardinality[g]
	return ok
}

// Index is the presentation position of g, or len(GroupSizes) if unknown.
func (g GroupSize) Index() int { return indexOf(GroupSizes, g) }

// RequiresGroupName reports whether entries of this class must be named.
func (g GroupSize) RequiresGroupName() bool {
	return g == Group || g == Formation || g == Production
}

// AgeBracket is the age class of an entry.
type AgeBracket string

// Age brackets from youngest to oldest.
const (
	Baby     AgeBracket = "Baby"
	MiniKids AgeBracket = "Mini Kids"
	Kids     AgeBracket = "Kids"
	Teen     AgeBracket = "Teen"
	Youth    AgeBracket = "Youth"
	Adult    AgeBracket = "Adult"
)

// AgeBrackets lists every bracket from youngest to oldest.
var AgeBrackets = []AgeBracket{Baby, MiniKids, Kids, Teen, Youth, Adult} //nolint:gochecknoglobals // fixed enumeration

// Valid reports whether a is a known bracket.
func (a AgeBracket) Valid() bool { return indexOf(AgeBrackets, a) < len(AgeBrackets) }

// Index is the position of a, or len(AgeBrackets) if unknown.
func (a AgeBracket) Index() int { return indexOf(AgeBrackets, a) }

// Difficulty is the difficulty code of an entry.
type Difficulty string

// Difficulty codes.
const (
	Advanced Difficulty = "A"
	Basic    Difficulty = "B"
)

// Difficulties lists codes in ascending order (A first).
var Difficulties = []Difficulty{Advanced, Basic} //nolint:gochecknoglobals // fixed enumeration

// Valid reports whether d is a known code.
func (d Difficulty) Valid() bool { return indexOf(Difficulties, d) < len(Difficulties) }

// Index is the position of d, or len(Difficulties) if unknown.
func (d Difficulty) Index() int { return indexOf(Difficulties, d) }

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return len(list)
}

const (
	keySeparator   = "|"
	labelSeparator = " – "
	keyParts       = 4
)

// Key identifies a category. Two entries share a category iff their keys
// are equal with ==.
type Key struct {
	Style      string
	GroupSize  GroupSize
	AgeBracket AgeBracket
	Difficulty Difficulty
}

// String renders the key as "Style|GroupSize|AgeBracket|Difficulty".
func (k Key) String() string {
	return strings.Join(k.parts(), keySeparator)
}

// Label renders the key for certificates and diploma listings.
func (k Key) Label() string {
	return strings.Join(k.parts(), labelSeparator)
}

func (k Key) parts() []string {
	return []string{k.Style, string(k.GroupSize), string(k.AgeBracket), string(k.Difficulty)}
}

// Parse is the inverse of Key.String. Components are taken verbatim.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, keySeparator)
	if len(parts) != keyParts {
		return Key{}, errs.Validation("category", "malformed category key %q: want %d components separated by %q, got %d",
			s, keyParts, keySeparator, len(parts))
	}
	return Key{
		Style:      parts[0],
		GroupSize:  GroupSize(parts[1]),
		AgeBracket: AgeBracket(parts[2]),
		Difficulty: Difficulty(parts[3]),
	}, nil
}
