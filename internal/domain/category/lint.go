package category

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// DefaultLintDistance is the edit distance under which style names are
// reported as probable duplicates.
const DefaultLintDistance = 2

// Similar is a pair of distinct keys that probably name the same category.
type Similar struct {
	A        Key
	B        Key
	Distance int
}

// Lint reports pairs of distinct keys that agree on every component except
// the style, whose names fold to the same text or lie within maxDistance
// edits of each other. A non-positive maxDistance uses DefaultLintDistance.
func Lint(keys []Key, maxDistance int) []Similar {
	if maxDistance <= 0 {
		maxDistance = DefaultLintDistance
	}
	fold := cases.Fold()
	seen := make(map[Key]bool, len(keys))
	uniq := make([]Key, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}

	var out []Similar
	for i := 0; i < len(uniq); i++ {
		for j := i + 1; j < len(uniq); j++ {
			a, b := uniq[i], uniq[j]
			if a.GroupSize != b.GroupSize || a.AgeBracket != b.AgeBracket || a.Difficulty != b.Difficulty {
				continue
			}
			na := normalizeStyle(fold.String(a.Style))
			nb := normalizeStyle(fold.String(b.Style))
			d := 0
			if na != nb {
				d = levenshtein.ComputeDistance(na, nb)
			}
			if d <= maxDistance {
				out = append(out, Similar{A: a, B: b, Distance: d})
			}
		}
	}
	return out
}

func normalizeStyle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
