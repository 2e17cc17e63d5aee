package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

// CanonicalDrivingOrder fixes the output order of driving categories so
// repeated runs over the same resume produce identical records.
var CanonicalDrivingOrder = []string{"A", "B", "BE", "C", "CE", "D", "DE"}

var validDrivingCats = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CanonicalDrivingOrder))
	for _, c := range CanonicalDrivingOrder {
		m[c] = struct{}{}
	}
	return m
}()

var (
	// "кат. B", "категорія В, С", "category B". The captured tail is
	// tokenized and validated token by token.
	reDrivingMarker = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:кат(?:\.|егор\p{L}*)?|categor\p{L}*)\s*[:\-–—]?\s*([^.;\n]{1,30})`)

	// Bare uppercase Latin category tokens, common in skill lists.
	reDrivingBare = regexp.MustCompile(`\b(BE|CE|DE|[ABCD])\b`)
)

// normalizeDrivingToken maps Cyrillic lookalike letters to Latin and
// uppercases. Scraped resumes mix the two alphabets freely.
func normalizeDrivingToken(tok string) (string, bool) {
	mapped := strings.Map(func(r rune) rune {
		switch unicode.ToUpper(r) {
		case 'А':
			return 'A'
		case 'В':
			return 'B'
		case 'С':
			return 'C'
		case 'Д':
			return 'D'
		case 'Е':
			return 'E'
		default:
			return unicode.ToUpper(r)
		}
	}, tok)
	_, ok := validDrivingCats[mapped]
	return mapped, ok
}

// collectDrivingCats scans one text fragment into the accumulator set.
func collectDrivingCats(set map[string]struct{}, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, m := range reDrivingMarker.FindAllStringSubmatch(text, -1) {
		tokens := strings.FieldsFunc(m[1], func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			cat, ok := normalizeDrivingToken(tok)
			if !ok {
				// The tail runs into ordinary prose; stop at the first
				// non-category word.
				break
			}
			set[cat] = struct{}{}
		}
	}
	for _, m := range reDrivingBare.FindAllStringSubmatch(text, -1) {
		if cat, ok := normalizeDrivingToken(m[1]); ok {
			set[cat] = struct{}{}
		}
	}
}

// ExtractDrivingCategories pulls driving-licence categories out of the
// given text fragments and returns them deduplicated in canonical
// order. Always returns a non-nil slice so the field serializes as an
// empty array, not null.
func ExtractDrivingCategories(texts ...string) []string {
	set := make(map[string]struct{})
	for _, t := range texts {
		collectDrivingCats(set, t)
	}
	out := make([]string, 0, len(set))
	for _, c := range CanonicalDrivingOrder {
		if _, ok := set[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
