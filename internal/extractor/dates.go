// Package extractor turns already-cleaned resume section text into
// structured work, education, language and driving-category records.
// It is a pure text pipeline: no I/O, no shared state, wall clock
// injected by the caller.
package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
)

// Month name lexicon, Ukrainian and Russian, keyed by the first three
// letters of the month name.
var monthPrefixes = map[string]int{
	// UA
	"січ": 1, "лют": 2, "бер": 3, "кві": 4, "тра": 5, "чер": 6,
	"лип": 7, "сер": 8, "вер": 9, "жов": 10, "лис": 11, "гру": 12,
	// RU
	"янв": 1, "фев": 2, "мар": 3, "апр": 4, "май": 5, "июн": 6,
	"июл": 7, "авг": 8, "сен": 9, "окт": 10, "ноя": 11, "дек": 12,
}

var (
	reDDMMYYYY  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`)
	reMMDotYYYY = regexp.MustCompile(`(\d{1,2})\.(\d{4})`)
	reMMYYYY    = regexp.MustCompile(`^(\d{2})\.(\d{4})$`)
	reYYYYMM    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	reMonthName = regexp.MustCompile(`^(\p{L}+)\s+(\d{4})$`)
)

// Synonyms for an ongoing period. Checked as substrings after
// lowercasing, the way they appear in scraped date tokens.
var presentSynonyms = []string{"нині", "тепер", "сьогодні", "дотепер", "present", "now"}

// ParseYM parses one month token into the first day of that month.
// Supported shapes: "04.2017", "2017-04", "квітень 2017" (first three
// letters of a Ukrainian or Russian month name plus year).
func ParseYM(token string) (time.Time, bool) {
	s := strings.TrimSpace(token)

	if m := reMMYYYY.FindStringSubmatch(s); m != nil {
		mm, _ := strconv.Atoi(m[1])
		yy, _ := strconv.Atoi(m[2])
		if mm >= 1 && mm <= 12 {
			return time.Date(yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}

	if m := reYYYYMM.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm >= 1 && mm <= 12 {
			return time.Date(yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}

	if m := reMonthName.FindStringSubmatch(s); m != nil {
		runes := []rune(strings.ToLower(m[1]))
		if len(runes) >= 3 {
			if mm, ok := monthPrefixes[string(runes[:3])]; ok {
				yy, _ := strconv.Atoi(m[2])
				return time.Date(yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC), true
			}
		}
	}

	return time.Time{}, false
}

// NormalizeDateToken reduces a heterogeneous date token to a canonical
// "YYYY-MM" period, the "present" sentinel, or "" when unparseable.
// Unparseable tokens are not an error: they propagate as zero duration.
func NormalizeDateToken(tok string) string {
	t := strings.ToLower(strings.TrimSpace(tok))
	t = strings.ReplaceAll(t, "р.", "")
	t = strings.ReplaceAll(t, "роки", "")
	t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "р"))

	if m := reDDMMYYYY.FindStringSubmatch(t); m != nil {
		yy := m[3]
		if len(yy) == 2 {
			yy = "19" + yy // crude two-digit promotion, matches scraped data
		}
		y, _ := strconv.Atoi(yy)
		mon, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%04d-%02d", y, mon)
	}
	if m := reMMDotYYYY.FindStringSubmatch(t); m != nil {
		y, _ := strconv.Atoi(m[2])
		mon, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%04d-%02d", y, mon)
	}
	for _, syn := range presentSynonyms {
		if strings.Contains(t, syn) {
			return constants.Present
		}
	}
	if d, ok := ParseYM(t); ok {
		return FormatYM(d)
	}
	return ""
}

// FormatYM renders a date as the canonical "YYYY-MM" period.
func FormatYM(d time.Time) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// NowYM is the canonical period of the current calendar month.
func NowYM(now time.Time) string {
	return FormatYM(now)
}

func ymToIndex(ym string) (int, bool) {
	m := reYYYYMM.FindStringSubmatch(ym)
	if m == nil {
		return 0, false
	}
	yy, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return yy*12 + mm, true
}

// CalcMonths returns the inclusive month count between two canonical
// periods: 2018-03..2018-03 is 1, 2018-03..2019-06 is 16. Zero when
// either side is unresolved or the range is transposed.
func CalcMonths(startYM, endYM string) int {
	a, okA := ymToIndex(startYM)
	b, okB := ymToIndex(endYM)
	if !okA || !okB || b < a {
		return 0
	}
	return (b - a) + 1
}

// MonthsBetween is the inclusive month count between two dates, zero
// when b precedes a.
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()) + 1
}

// YearsFromMonths converts a month total to years with one decimal
// place. Non-positive totals yield 0, which serializes as "absent".
func YearsFromMonths(months int) float64 {
	if months <= 0 {
		return 0
	}
	s := strconv.FormatFloat(float64(months)/12.0, 'f', 1, 64)
	years, _ := strconv.ParseFloat(s, 64)
	return years
}
