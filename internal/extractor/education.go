package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

const eduTrimCutset = " \t,;-–—"

var (
	// "з 2015 по 2019", "с 2010 до нині"
	reEduYearRange = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:з|с)\s+(\d{4})\s+(?:по|до)\s+(\d{4}|нині|тепер|present)`)

	// Parenthesized counters like "(5 років)" add nothing to the record.
	reEduParenNum = regexp.MustCompile(`\(\s*\d+[^)]*\)`)
)

// Canonical degree vocabulary in precedence order; the first level
// whose keyword occurs in the line wins, so "незакінчена вища" is not
// mistaken for plain "вища".
var eduDegreeLevels = []struct {
	level string
	keys  []string
}{
	{"незакінчена вища", []string{"незакінчен", "неповна вища", "incomplete higher"}},
	{"вища", []string{"вища", "высшее", "higher"}},
	{"середня спеціальна", []string{"середня спеціальна", "среднее специальное", "vocational", "college"}},
	{"середня", []string{"середня", "среднее", "secondary"}},
}

// DetectDegreeLevel classifies free text into the canonical degree
// vocabulary. Unclassifiable text yields an empty level.
func DetectDegreeLevel(s string) string {
	low := strings.ToLower(s)
	for _, d := range eduDegreeLevels {
		for _, k := range d.keys {
			if strings.Contains(low, k) {
				return d.level
			}
		}
	}
	return ""
}

// Institution-type markers across the supported languages. Stems, so
// inflected forms ("університеті", "институтом") match too.
var eduInstitutionMarkers = []string{
	"універ", "универ", "university",
	"інститут", "институт", "institute",
	"академ", "academy",
}

// isInstitutionLine reports whether a line names an education
// institution on its own. Very short lines are too ambiguous to open an
// entry by themselves.
func isInstitutionLine(s string) bool {
	if utf8.RuneCountInString(s) <= 6 {
		return false
	}
	low := strings.ToLower(s)
	for _, marker := range eduInstitutionMarkers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// ParseEducation parses an education section into study periods.
//
// The common shape is an institution line followed by a line with a
// bare year range and comma-separated qualifiers:
//
//	Київський національний університет
//	з 2015 по 2019, вища, комп'ютерні науки
//
// A line carrying an institution marker without a date span flushes
// the open entry and starts a new one. A bare year range spans January
// through December; its inclusive duration is counted year-boundary to
// year-boundary, and the line's degree level is classified against the
// canonical vocabulary. Lines with month-precision dates are handled
// like work metadata lines. Any other line feeds the open entry's
// specialty, then its free-text remainder.
func ParseEducation(text string, now time.Time) []types.EduItem {
	var items []types.EduItem
	var cur *types.EduItem
	var pending []string

	flush := func() {
		if cur != nil {
			items = append(items, *cur)
			cur = nil
		}
	}

	addDetail := func(piece string) {
		if cur.Specialty == "" {
			cur.Specialty = piece
			return
		}
		if cur.Extra != "" {
			cur.Extra += "; "
		}
		cur.Extra += piece
	}

	// open makes sure a dated line has an entry to fill, seeding the
	// institution from the undated lines above it. A second date span
	// on an already-dated entry starts a new study period.
	open := func() {
		if cur != nil && cur.Start != "" {
			flush()
		}
		if cur == nil {
			cur = &types.EduItem{}
			if len(pending) > 0 {
				cur.Place = pending[0]
				for _, p := range pending[1:] {
					addDetail(p)
				}
				pending = nil
			}
		}
	}

	assignPieces := func(pieces []string) {
		for _, p := range pieces {
			p = strings.Trim(p, eduTrimCutset)
			if p == "" {
				continue
			}
			// The degree text itself is already captured as the level.
			if cur.Degree != "" && DetectDegreeLevel(p) != "" {
				continue
			}
			if cur.Place == "" {
				cur.Place = p
				continue
			}
			addDetail(p)
		}
	}

	splitPieces := func(s string) []string {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ';'
		})
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(reEduParenNum.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}

		if loc := reEduYearRange.FindStringSubmatchIndex(line); loc != nil {
			open()
			y1, _ := strconv.Atoi(line[loc[2]:loc[3]])
			endRaw := strings.ToLower(line[loc[4]:loc[5]])

			cur.Start = fmt.Sprintf("%04d-01", y1)
			if y2, err := strconv.Atoi(endRaw); err == nil {
				cur.End = fmt.Sprintf("%04d-12", y2)
				if y2 >= y1 {
					cur.Months = (y2-y1)*12 + 1
				}
			} else {
				cur.End = constants.Present
				cur.Months = CalcMonths(cur.Start, NowYM(now))
			}
			if cur.Degree == "" {
				cur.Degree = DetectDegreeLevel(line)
			}

			var pieces []string
			if prefix := strings.Trim(line[:loc[0]], eduTrimCutset); prefix != "" {
				pieces = append(pieces, prefix)
			}
			pieces = append(pieces, splitPieces(strings.Trim(line[loc[1]:], eduTrimCutset))...)
			assignPieces(pieces)
			continue
		}

		if isDatesMetaLine(line) {
			open()
			dates := reMetaMMYYYY.FindAllStringSubmatch(line, -1)
			if len(dates) > 0 {
				cur.Start = dates[0][2] + "-" + dates[0][1]
			}
			if len(dates) >= 2 {
				cur.End = dates[1][2] + "-" + dates[1][1]
			} else if rePresentWord.MatchString(line) {
				cur.End = constants.Present
			}
			endYM := cur.End
			if endYM == constants.Present {
				endYM = NowYM(now)
			}
			cur.Months = CalcMonths(cur.Start, endYM)
			if cur.Degree == "" {
				cur.Degree = DetectDegreeLevel(line)
			}

			tail := ""
			if m := reAfterToDate.FindStringSubmatch(line); m != nil {
				tail = strings.Trim(m[1], eduTrimCutset)
			}
			assignPieces(splitPieces(tail))
			continue
		}

		if isInstitutionLine(line) {
			flush()
			cur = &types.EduItem{Place: line}
			continue
		}

		if cur != nil {
			addDetail(line)
			continue
		}
		pending = append(pending, line)
	}
	flush()

	// Trailing prose belongs to the last entry.
	if len(pending) > 0 && len(items) > 0 {
		last := &items[len(items)-1]
		if last.Extra != "" {
			last.Extra += "; "
		}
		last.Extra += strings.Join(pending, "; ")
	}
	return items
}
