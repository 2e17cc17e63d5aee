package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

const maxTitleLen = 80

// Legal-entity suffix tokens used to tell a company segment from a
// role segment.
var opfTokens = map[string]struct{}{
	"тов": {}, "тзов": {}, "ооо": {}, "пп": {}, "дп": {},
	"пат": {}, "ат": {}, "прат": {}, "фоп": {}, "флп": {}, "іп": {},
}

// Word-boundary patterns. Go's \b is ASCII-only, so Cyrillic markers
// are guarded by explicit non-letter context instead.
var (
	reFromMarker  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])[зс](?:[^\p{L}]|$)`)
	reToMarker    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:по|до)(?:[^\p{L}]|$)`)
	rePresentWord = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:нині|тепер|сьогодні|present)(?:[^\p{L}]|$)`)

	reMetaMMYYYY = regexp.MustCompile(`(\d{2})\.(\d{4})`)

	// "2020 – 2025", "2020-2025", "2020 — нині", "2020 – now"
	reInlineYears = regexp.MustCompile(`(?i)(\d{4})\s*[–—-]\s*(\d{4}|нині|тепер|present|now)(?:[^\p{L}\p{N}]|$)`)

	// Any date-looking fragment, used to detect the start of a new block
	// in the inline fallback.
	reAnyDatesHint = regexp.MustCompile(`(?i)\d{2}\.\d{4}|\d{4}\s*[–—-]\s*(?:\d{4}|нині|тепер|present|now)`)

	// "Title (2020 – 2025) Company (Industry)"
	reInlineTitle = regexp.MustCompile(`^(.+?)\s*\(([^)]{3,50})\)\s*(.*)$`)
	reInlineRest  = regexp.MustCompile(`^(.*?)(?:\s*\(([^)]{2,120})\)\s*)?$`)

	// "з 05.2018 по нині - Водій, Експедитор, ТОВ Транс"
	reDatePairLine = regexp.MustCompile(`(?i)^\s*(?:з|із|from)\s+(.+?)\s+(?:по|до|to)\s+(.+?)\s*[-–—]\s*(.+)$`)
	reOPFTail      = regexp.MustCompile(`(?i)((?:ТОВ|ТзОВ|ООО|ДП|ПП|АТ|ПрАТ|ФОП)\s+.+)$`)

	reAfterToDate  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:по|до)\s*(?:\d{2}\.\d{4}|нині|тепер|сьогодні|present)\s*(.*)$`)
	reFirstParen   = regexp.MustCompile(`\([^)]*\)\s*(.*)$`)
	reLeadingParen = regexp.MustCompile(`^\([^)]*\)\s*(.*)$`)
	reTailParen    = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)

	reRoleSep = regexp.MustCompile(`\s*[-–—/]\s*`)
)

// isDatesMetaLine reports whether a line is a date/metadata line:
// both a "from" and a "to/until" marker plus at least one numeric
// month.year token must be present, so ordinary prose does not qualify.
func isDatesMetaLine(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	return reFromMarker.MatchString(t) && reToMarker.MatchString(t) && reMetaMMYYYY.MatchString(t)
}

// looksLikeTitle: non-empty, at most 80 characters, not itself a
// date/metadata line.
func looksLikeTitle(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" || isDatesMetaLine(t) {
		return false
	}
	return utf8.RuneCountInString(t) <= maxTitleLen
}

// splitTailParentheses peels trailing "(...)" groups off a metadata
// tail, right to left, returning the base text and the group contents
// in their original order.
func splitTailParentheses(meta string) (string, []string) {
	s := strings.TrimSpace(meta)
	var parens []string
	for {
		loc := reTailParen.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		parens = append([]string{strings.TrimSpace(s[loc[2]:loc[3]])}, parens...)
		s = strings.TrimRight(s[:loc[0]], " \t")
	}
	return s, parens
}

// looksLikeCity decides whether the last comma-segment of a metadata
// tail is a city rather than part of the company name. Short unquoted
// tokens of at most two words qualify; region markers always qualify.
func looksLikeCity(token string) bool {
	t := strings.TrimSpace(token)
	if t == "" {
		return false
	}
	low := strings.Trim(strings.ToLower(t), ` "'“”«»()`)
	if _, ok := opfTokens[low]; ok {
		return false
	}
	if strings.ContainsAny(t, `"“”«»0123456789`) {
		return false
	}
	words := strings.Fields(low)
	if len(words) >= 3 {
		return false
	}
	if strings.Contains(low, "обл") || strings.Contains(low, "район") {
		return true
	}
	return len(words) >= 1 && len(words) <= 2
}

// datesMeta is one parsed metadata line.
type datesMeta struct {
	start    string // canonical "YYYY-MM" or ""
	end      string // canonical "YYYY-MM", "present" or ""
	months   int
	company  string
	city     string
	industry string
}

// parseDatesMetaLine parses a line of the shape
//
//	з 10.2019 по 02.2022 (2 роки 5 місяців) Ostriv, Киев (Розничная торговля)
//	з 01.2004 по нині (22 роки) Власне авто (Приватні особи)
//
// The duration annotation is optional. Trailing parenthesized groups
// are peeled right to left: the last is the industry, a second-from-
// last is a region override for the city.
func parseDatesMetaLine(line string, now time.Time) datesMeta {
	t := strings.TrimSpace(line)
	var meta datesMeta

	dates := reMetaMMYYYY.FindAllStringSubmatch(t, -1)
	if len(dates) > 0 {
		meta.start = dates[0][2] + "-" + dates[0][1]
	}
	if len(dates) >= 2 {
		meta.end = dates[1][2] + "-" + dates[1][1]
	} else if rePresentWord.MatchString(t) {
		meta.end = constants.Present
	}

	endYM := meta.end
	if endYM == constants.Present {
		endYM = NowYM(now)
	}
	meta.months = CalcMonths(meta.start, endYM)

	// Cut the left part up to and including the "по <date>" marker;
	// what remains is the company/city/industry tail.
	metaPart := t
	if m := reAfterToDate.FindStringSubmatch(t); m != nil {
		metaPart = strings.TrimSpace(m[1])
	} else if m := reFirstParen.FindStringSubmatch(t); m != nil {
		metaPart = strings.TrimSpace(m[1])
	}
	if m := reLeadingParen.FindStringSubmatch(metaPart); m != nil {
		metaPart = strings.TrimSpace(m[1])
	}

	base, parens := splitTailParentheses(metaPart)

	if len(parens) > 0 {
		meta.industry = parens[len(parens)-1]
	}
	var region string
	if len(parens) >= 2 {
		region = parens[0]
	}

	var parts []string
	for _, p := range strings.Split(base, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch {
	case len(parts) == 0:
	case len(parts) >= 2 && looksLikeCity(parts[len(parts)-1]):
		meta.city = parts[len(parts)-1]
		meta.company = strings.Join(parts[:len(parts)-1], ", ")
	default:
		meta.company = strings.Join(parts, ", ")
	}

	// A region from the parenthesis chain beats a comma-derived city.
	if region != "" {
		meta.city = region
	}
	return meta
}

// inlineMeta is one parsed "Title (years) Company (Industry)" line.
type inlineMeta struct {
	title    string
	start    string
	end      string
	months   int
	company  string
	industry string
}

// parseInlineTitleDatesMeta parses the inline fallback shape, e.g.
// "Кур'єр / водій (2020 – 2025) Some Company (Industry)". A bare year
// range spans January of the first year through the end of the last;
// its inclusive duration is counted year-boundary to year-boundary.
func parseInlineTitleDatesMeta(line string, now time.Time) (inlineMeta, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return inlineMeta{}, false
	}
	m := reInlineTitle.FindStringSubmatch(s)
	if m == nil {
		return inlineMeta{}, false
	}
	out := inlineMeta{title: strings.TrimSpace(m[1])}
	datesPart := strings.TrimSpace(m[2])
	rest := strings.TrimSpace(m[3])

	m2 := reInlineYears.FindStringSubmatch(datesPart)
	if m2 == nil {
		return inlineMeta{}, false
	}
	y1, _ := strconv.Atoi(m2[1])
	endRaw := strings.ToLower(m2[2])
	out.start = fmt.Sprintf("%04d-01", y1)

	if y2, err := strconv.Atoi(endRaw); err == nil {
		out.end = fmt.Sprintf("%04d-12", y2)
		if y2 >= y1 {
			out.months = (y2-y1)*12 + 1
		}
	} else {
		out.end = constants.Present
		out.months = CalcMonths(out.start, NowYM(now))
	}

	if rest != "" {
		if m3 := reInlineRest.FindStringSubmatch(rest); m3 != nil {
			out.company = strings.TrimSpace(m3[1])
			out.industry = strings.TrimSpace(m3[2])
		} else {
			out.company = rest
		}
	}
	return out, true
}

// roleSegment is one role carved out of a multi-role block.
type roleSegment struct {
	role string
	text string
}

// splitTitleRoleCandidates breaks a composite title ("Courier/Driver",
// "Вантажник - комплектувальник") into candidate role names.
func splitTitleRoleCandidates(title string) []string {
	t := strings.TrimSpace(title)
	if t == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, p := range reRoleSep.Split(t, -1) {
		p = strings.TrimSpace(p)
		n := utf8.RuneCountInString(p)
		if n < 2 || n > maxTitleLen {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// findRolePrefix locates occurrences of role in text that are
// immediately followed (modulo spaces) by a role-separator glyph.
// Returns the occurrence count and, for the first occurrence, the
// match position and the segment start just past the separator.
func findRolePrefix(text, lower, role string) (count, pos, segStart int) {
	rl := strings.ToLower(role)
	pos, segStart = -1, -1
	for from := 0; ; {
		idx := strings.Index(lower[from:], rl)
		if idx < 0 {
			break
		}
		p := from + idx
		end := p + len(rl)
		from = p + len(rl)

		if prev, _ := utf8.DecodeLastRuneInString(text[:p]); p > 0 && isWordRune(prev) {
			continue
		}
		if next, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && isWordRune(next) {
			continue
		}
		q := end
		for q < len(text) && text[q] == ' ' {
			q++
		}
		if q >= len(text) {
			continue
		}
		sep, size := utf8.DecodeRuneInString(text[q:])
		switch sep {
		case '-', '–', '—', ':', '(':
			count++
			if pos < 0 {
				pos, segStart = p, q+size
			}
		}
	}
	return count, pos, segStart
}

// splitDutiesByRolePrefixes partitions a multi-role block's duty text
// into one segment per role. Every candidate role must reappear in the
// duty text exactly once, followed by a separator glyph; otherwise the
// block stays a single entry.
func splitDutiesByRolePrefixes(title, dutiesText string) []roleSegment {
	roles := splitTitleRoleCandidates(title)
	if len(roles) < 2 {
		return nil
	}
	dt := normalizeWS(dutiesText)
	if dt == "" {
		return nil
	}
	lower := strings.ToLower(dt)

	type hit struct {
		pos      int
		segStart int
		role     string
	}
	var hits []hit
	for _, r := range roles {
		count, pos, segStart := findRolePrefix(dt, lower, r)
		if count != 1 {
			return nil
		}
		hits = append(hits, hit{pos: pos, segStart: segStart, role: r})
	}

	// Text order, not title order, decides the real segment sequence.
	sort.Slice(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	var segments []roleSegment
	for idx, h := range hits {
		segEnd := len(dt)
		if idx+1 < len(hits) {
			segEnd = hits[idx+1].pos
		}
		if h.segStart > segEnd {
			return nil
		}
		segText := strings.TrimSpace(dt[h.segStart:segEnd])
		if segText == "" {
			return nil
		}
		segments = append(segments, roleSegment{role: h.role, text: segText})
	}
	return segments
}

// ParseWorkExperience parses one work-experience section into a list
// of employment entries. Three strategies are tried in order; the
// first one that yields entries wins:
//
//  1. title line followed by a date/metadata line,
//  2. inline "Title (YYYY – YYYY) Company (Industry)" lines,
//  3. single-line "з DATE по DATE - Title, Company" entries.
func ParseWorkExperience(text string, now time.Time) []types.WorkItem {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}

	items := parseTitleMetaEntries(lines, now)
	if len(items) == 0 {
		items = parseInlineEntries(lines, now)
	}
	if len(items) == 0 {
		items = parseOneLineDateEntries(lines, now)
	}
	if len(items) == 0 && len(lines) > 0 {
		logger.Debug().Int("lines", len(lines)).Msg("work experience: non-empty text but no entries")
	}
	return items
}

// parseTitleMetaEntries is the primary strategy: a title candidate
// followed by a metadata line opens a block; subsequent lines
// accumulate as duty text until the next block boundary.
func parseTitleMetaEntries(lines []string, now time.Time) []types.WorkItem {
	var items []types.WorkItem
	i := 0
	for i < len(lines) {
		if !looksLikeTitle(lines[i]) {
			i++
			continue
		}
		title := lines[i]
		if i+1 >= len(lines) || !isDatesMetaLine(lines[i+1]) {
			i++
			continue
		}
		metaLine := lines[i+1]
		meta := parseDatesMetaLine(metaLine, now)

		j := i + 2
		var dutiesAcc []string
		for j < len(lines) {
			cur := lines[j]
			var nxt string
			if j+1 < len(lines) {
				nxt = lines[j+1]
			}
			// Next block: title + metadata pair, or a stray metadata line.
			if looksLikeTitle(cur) && nxt != "" && isDatesMetaLine(nxt) {
				break
			}
			if isDatesMetaLine(cur) {
				break
			}
			if isIgnorableHeaderLine(cur) {
				j++
				continue
			}
			dutiesAcc = append(dutiesAcc, cur)
			j++
		}
		dutiesText := strings.TrimSpace(strings.Join(dutiesAcc, " "))

		if segments := splitDutiesByRolePrefixes(title, dutiesText); len(segments) > 0 {
			// One entry per role, sharing dates/company/city/industry.
			for _, seg := range segments {
				items = append(items, types.WorkItem{
					Title:      seg.role,
					Company:    meta.company,
					City:       meta.city,
					Industry:   meta.industry,
					Start:      meta.start,
					End:        meta.end,
					Months:     meta.months,
					Duties:     SplitDutiesStrict(seg.text),
					DutiesText: seg.text,
					BlockText:  seg.text,
				})
			}
		} else {
			blockLines := append([]string{title, metaLine}, dutiesAcc...)
			items = append(items, types.WorkItem{
				Title:      title,
				Company:    meta.company,
				City:       meta.city,
				Industry:   meta.industry,
				Start:      meta.start,
				End:        meta.end,
				Months:     meta.months,
				Duties:     SplitDuties(dutiesText),
				DutiesText: dutiesText,
				BlockText:  strings.TrimSpace(strings.Join(blockLines, "\n")),
			})
		}
		i = j
	}
	return items
}

// parseInlineEntries is the first fallback: inline title-with-dates
// lines, duties accumulated until the next inline match or a
// title-looking line with a date hint.
func parseInlineEntries(lines []string, now time.Time) []types.WorkItem {
	var items []types.WorkItem
	k := 0
	for k < len(lines) {
		ln := lines[k]
		if isIgnorableHeaderLine(ln) {
			k++
			continue
		}
		parsed, ok := parseInlineTitleDatesMeta(ln, now)
		if !ok {
			k++
			continue
		}

		var dlines []string
		k++
		for k < len(lines) {
			cur := lines[k]
			if isIgnorableHeaderLine(cur) {
				k++
				continue
			}
			if _, isNew := parseInlineTitleDatesMeta(cur, now); isNew {
				break
			}
			if reAnyDatesHint.MatchString(cur) && looksLikeTitle(cur) {
				break
			}
			dlines = append(dlines, cur)
			k++
		}

		duties, dutiesText := dutiesFromLines(dlines)
		blockLines := append([]string{ln}, dlines...)
		items = append(items, types.WorkItem{
			Title:      parsed.title,
			Company:    parsed.company,
			Industry:   parsed.industry,
			Start:      parsed.start,
			End:        parsed.end,
			Months:     parsed.months,
			Duties:     duties,
			DutiesText: dutiesText,
			BlockText:  strings.TrimSpace(strings.Join(blockLines, "\n")),
		})
	}
	return items
}

// parseOneLineDateEntries is the last fallback: whole entries on one
// line, "з DATE по DATE - Title, Title2, Company". The company is
// guessed from the final comma-segment when it carries a legal-entity
// token or quoted text.
func parseOneLineDateEntries(lines []string, now time.Time) []types.WorkItem {
	var items []types.WorkItem
	for _, ln := range lines {
		m := reDatePairLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		start := NormalizeDateToken(m[1])
		end := NormalizeDateToken(m[2])
		rest := strings.TrimSpace(m[3])

		var candidates []string
		for _, c := range strings.Split(rest, ",") {
			if c = strings.TrimSpace(c); c != "" {
				candidates = append(candidates, c)
			}
		}

		company := ""
		title := rest
		if len(candidates) >= 2 {
			last := candidates[len(candidates)-1]
			if hasOPFToken(last) || strings.ContainsAny(last, `«»"“”`) {
				company = last
				title = strings.Join(candidates[:len(candidates)-1], ", ")
			}
		}
		if company == "" {
			if loc := reOPFTail.FindStringIndex(rest); loc != nil {
				company = strings.TrimSpace(rest[loc[0]:loc[1]])
				title = strings.Trim(rest[:loc[0]], " -–—,")
			}
		}

		endYM := end
		if endYM == constants.Present {
			endYM = NowYM(now)
		}
		items = append(items, types.WorkItem{
			Title:     title,
			Company:   company,
			Start:     start,
			End:       end,
			Months:    CalcMonths(start, endYM),
			BlockText: strings.TrimSpace(ln),
		})
	}
	return items
}

// hasOPFToken reports whether any word of s is a known legal-entity
// suffix token.
func hasOPFToken(s string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ` "'“”«».,()`)
		if _, ok := opfTokens[w]; ok {
			return true
		}
	}
	return false
}
