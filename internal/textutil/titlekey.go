package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTitleKeyLength is the number of normalized runes kept by TitleKey.
// Plex cuts the show title embedded in an episode's display string at about
// this length, so comparing longer prefixes would reject genuine matches.
const DefaultTitleKeyLength = 16

// TitleKeyer builds comparison keys for the show-title containment heuristic.
//
// The heuristic is deliberately loose: two shows whose first PrefixLength
// normalized runes agree (sequels, spin-offs, long shared prefixes) produce the
// same key, and containment can succeed on unrelated titles that happen to
// embed the key. Callers accept those false positives and negatives.
type TitleKeyer struct {
	PrefixLength int
}

// NewTitleKeyer returns a keyer, falling back to DefaultTitleKeyLength for
// non-positive lengths.
func NewTitleKeyer(prefixLength int) TitleKeyer {
	if prefixLength <= 0 {
		prefixLength = DefaultTitleKeyLength
	}
	return TitleKeyer{PrefixLength: prefixLength}
}

// Key normalizes title and truncates it to the configured prefix length.
func (k TitleKeyer) Key(title string) string {
	limit := k.PrefixLength
	if limit <= 0 {
		limit = DefaultTitleKeyLength
	}
	normalized := []rune(NormalizeTitle(title))
	if len(normalized) > limit {
		normalized = normalized[:limit]
	}
	return string(normalized)
}

// Matches reports whether the key of title is contained in the normalized
// form of display.
func (k TitleKeyer) Matches(display, title string) bool {
	return ContainsTitleKey(NormalizeTitle(display), k.Key(title))
}

// TitleKey is Key with DefaultTitleKeyLength.
func TitleKey(title string) string {
	return TitleKeyer{PrefixLength: DefaultTitleKeyLength}.Key(title)
}

// NormalizeTitle drops every rune that is not a letter or number and
// lowercases the remainder. It does not truncate.
func NormalizeTitle(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return cases.Lower(language.Und).String(b.String())
}

// ContainsTitleKey is the asymmetric containment test: needle must appear
// inside haystack. An empty needle never matches so blank titles cannot
// claim every episode.
func ContainsTitleKey(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}
