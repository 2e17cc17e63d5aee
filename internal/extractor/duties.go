package extractor

import (
	"regexp"
	"strings"
)

const dutyTrimCutset = " \t-–—,"

var (
	// Section headers that carry no duty content on their own.
	reIgnorableHeader = regexp.MustCompile(`(?i)^\s*(ОСОБИСТІ\s+ЯКОСТІ|ОБОВ['’]?\s*ЯЗКИ|ОБОВЯЗКИ|ОБЯЗАННОСТИ)\s*:?\s*$`)

	reHeaderPrefix = regexp.MustCompile(`(?i)^\s*(обов[’'` + "`" + `]?язки|обязанности|обовязки|особисті якості)\s*:?\s*`)

	// A leading "duties:" marker. Its presence switches the splitter to
	// the strict sentence-punctuation policy.
	reDutiesPrefix = regexp.MustCompile(`(?i)^\s*(обов[’']?язки|обязанности|duties)\s*:\s*`)

	reBulletPrefix   = regexp.MustCompile(`^\s*[•\-\*]+\s*(?:[•\-\*]+\s*)*`)
	reNumberedBullet = regexp.MustCompile(`^\s*(?:[•\-\*]+|\d+[.):])\s+`)

	reWordToken  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// normalizeWS collapses runs of whitespace to single spaces.
func normalizeWS(s string) string {
	return reWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func isIgnorableHeaderLine(line string) bool {
	return reIgnorableHeader.MatchString(strings.TrimSpace(line))
}

func stripHeaders(s string) string {
	return reHeaderPrefix.ReplaceAllString(strings.TrimSpace(s), "")
}

func hasDutiesPrefix(s string) bool {
	return reDutiesPrefix.MatchString(s)
}

func isBulletLine(line string) bool {
	return reBulletPrefix.MatchString(strings.TrimSpace(line))
}

// stripBullet removes bullet glyphs or a numbered-list prefix.
func stripBullet(line string) string {
	s := strings.TrimSpace(line)
	if out := reNumberedBullet.ReplaceAllString(s, ""); out != s {
		return strings.TrimSpace(out)
	}
	return strings.TrimSpace(reBulletPrefix.ReplaceAllString(s, ""))
}

// splitOutsideParens splits text on any of the separator characters,
// but only at parenthesis depth zero, so asides like "(incl. B, C)"
// stay intact.
func splitOutsideParens(text string, seps string) []string {
	var out []string
	var buf strings.Builder
	depth := 0
	for _, ch := range text {
		switch ch {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && strings.ContainsRune(seps, ch) {
			if piece := strings.TrimSpace(buf.String()); piece != "" {
				out = append(out, piece)
			}
			buf.Reset()
			continue
		}
		buf.WriteRune(ch)
	}
	if tail := strings.TrimSpace(buf.String()); tail != "" {
		out = append(out, tail)
	}
	return out
}

// dedupDuties drops case-insensitive repeats, preserving first-seen order.
func dedupDuties(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		key := normalizeWS(strings.ToLower(it))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func trimDutyPieces(parts []string) []string {
	var out []string
	for _, p := range parts {
		if t := strings.Trim(p, dutyTrimCutset); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitDutiesStrict splits only on sentence-ending punctuation. Used
// for role text that was deliberately sub-segmented upstream.
func SplitDutiesStrict(text string) []string {
	t := normalizeWS(text)
	if t == "" {
		return nil
	}
	return dedupDuties(trimDutyPieces(splitOutsideParens(t, ".;")))
}

// SplitDuties segments one composite duties block into discrete items.
//
// Bulleted lines each become one duty. Otherwise the block is joined
// into a single string and split on separators honored at parenthesis
// depth zero; a "duties:" prefix or a prose-shaped text (>=10 words,
// comma count not exceeding word-count/12) restricts the separators to
// sentence punctuation so descriptive sentences are not shredded into
// sub-phrase fragments.
func SplitDuties(text string) []string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}

	prefixed := hasDutiesPrefix(raw)
	s := stripHeaders(raw)
	if s == "" || isBareHeaderWord(s) {
		return nil
	}

	var lines []string
	for _, ln := range strings.Split(s, "\n") {
		ln = stripHeaders(ln)
		if ln == "" || isBareHeaderWord(ln) {
			continue
		}
		lines = append(lines, ln)
	}
	if len(lines) == 0 {
		return nil
	}

	var bulletLines []string
	for _, ln := range lines {
		if isBulletLine(ln) {
			bulletLines = append(bulletLines, ln)
		}
	}
	if len(bulletLines) > 0 {
		var out []string
		for _, ln := range bulletLines {
			if d := stripHeaders(stripBullet(ln)); d != "" {
				out = append(out, d)
			}
		}
		return dedupDuties(out)
	}

	joined := normalizeWS(strings.Join(lines, " "))
	if joined == "" {
		return nil
	}

	if prefixed {
		return dedupDuties(trimDutyPieces(splitOutsideParens(joined, ".;")))
	}

	words := len(reWordToken.FindAllString(joined, -1))
	commas := strings.Count(joined, ",")
	limit := words / 12
	if limit < 1 {
		limit = 1
	}
	if words >= 10 && commas <= limit {
		return dedupDuties(trimDutyPieces(splitOutsideParens(joined, ".;")))
	}
	return dedupDuties(trimDutyPieces(splitOutsideParens(joined, ",.;")))
}

func isBareHeaderWord(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "обов'язки", "обовязки", "обязанности", "особисті якості":
		return true
	}
	return false
}

// dutiesFromLines builds a duty list from raw block lines: bullets keep
// the whole line as one duty, plain lines are split on every separator.
func dutiesFromLines(lines []string) ([]string, string) {
	var acc []string
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || isIgnorableHeaderLine(ln) {
			continue
		}
		if isBulletLine(ln) {
			if d := stripBullet(ln); d != "" {
				acc = append(acc, d)
			}
			continue
		}
		for _, p := range strings.FieldsFunc(ln, func(r rune) bool {
			return r == ';' || r == ',' || r == '.' || r == '•'
		}) {
			p = strings.TrimSpace(p)
			if p != "" && !isIgnorableHeaderLine(p) {
				acc = append(acc, p)
			}
		}
	}
	out := dedupDuties(acc)
	return out, strings.TrimSpace(strings.Join(out, " "))
}
