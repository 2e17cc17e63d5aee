package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// Explicit position marker inside free text, a fallback when the
// payload has no dedicated position section.
var rePositionMarker = regexp.MustCompile(`(?i)(?:Должность|Посада|Position)\s*[:\-]\s*([^\n]+)`)

// splitCSVLike splits a scraped list string on the separators the site
// uses, keeping parenthesized asides like "(incl. B, C)" intact.
func splitCSVLike(s string) []string {
	return splitOutsideParens(s, ",;•\n")
}

// flattenSkillList expands entries that still pack several skills into
// one string and drops case-insensitive repeats, keeping first-seen
// order and original spelling.
func flattenSkillList(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range raw {
		for _, p := range splitCSVLike(entry) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			key := normalizeWS(strings.ToLower(p))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// ExtractPayload runs every section extractor over one payload's parsed
// sections. Missing sections simply produce empty slices; nothing here
// fails.
func ExtractPayload(sections *types.ParsedSections, now time.Time) types.ExtractResult {
	var res types.ExtractResult
	if sections == nil {
		return res
	}

	res.Position = strings.TrimSpace(sections.Position)
	res.Salary = sections.Salary
	res.Skills = flattenSkillList(sections.Skills)
	res.Languages = ParseLanguages(sections.Languages)
	res.WorkItems = ParseWorkExperience(sections.WorkExperience, now)
	res.EduItems = ParseEducation(sections.Education, now)

	if res.Position == "" {
		if m := rePositionMarker.FindStringSubmatch(sections.WorkExperience); m != nil {
			res.Position = strings.TrimSpace(m[1])
		}
	}
	return res
}
