package judging

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Username derives the login of an event judge:
// judge_<eventID>_<first name lower-cased without diacritics, spaces or dots>.
func Username(eventID int64, firstName string) string {
	return "judge_" + strconv.FormatInt(eventID, 10) + "_" + foldName(firstName)
}

// UsernamePrefix is shared by every judge of an event.
func UsernamePrefix(eventID int64) string {
	return "judge_" + strconv.FormatInt(eventID, 10) + "_"
}

func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}
