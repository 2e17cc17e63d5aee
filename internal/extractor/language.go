package extractor

import (
	"regexp"
	"strings"

	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// Proficiency vocabulary. Order matters: more specific labels come
// first so "вище середнього" is not swallowed by the "середн" stem and
// "pre-intermediate" is not swallowed by "intermediate".
var levelDefs = []struct {
	canonical string
	aliases   []string
}{
	{"вище середнього", []string{"вище середнього", "выше среднего", "upper intermediate", "upper-intermediate", "b2"}},
	{"вільно", []string{"вільно", "свободно", "fluent", "native", "рідна", "рідн", "родной", "c2"}},
	{"просунутий", []string{"просунут", "продвинут", "advanced", "c1"}},
	{"початковий", []string{"початк", "начальн", "базов", "beginner", "elementary", "pre-intermediate", "a1", "a2"}},
	{"середній", []string{"середн", "средн", "intermediate", "b1"}},
}

// Short CEFR codes need boundary guards so "b1" does not fire inside an
// unrelated word.
var levelCodeRes = map[string]*regexp.Regexp{}

func init() {
	for _, def := range levelDefs {
		for _, a := range def.aliases {
			if len(a) <= 3 {
				levelCodeRes[a] = regexp.MustCompile(`(?:^|[^a-z0-9])` + a + `(?:[^a-z0-9]|$)`)
			}
		}
	}
}

var langNormReplacer = strings.NewReplacer("’", "'", "`", "'")

func normText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = langNormReplacer.Replace(s)
	return reWhitespace.ReplaceAllString(s, " ")
}

func detectLevel(norm string) string {
	for _, def := range levelDefs {
		for _, a := range def.aliases {
			if re, ok := levelCodeRes[a]; ok {
				if re.MatchString(norm) {
					return def.canonical
				}
			} else if strings.Contains(norm, a) {
				return def.canonical
			}
		}
	}
	return ""
}

// ParseLanguageItem parses one raw language entry, e.g.
// "Англійська — вище середнього", "Українська (рідна)", "English - B2".
// The language name is the text up to the first separator; an
// unrecognized level leaves Level empty rather than dropping the entry.
func ParseLanguageItem(raw string) types.LanguageItem {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.LanguageItem{}
	}

	name := s
	if idx := strings.IndexAny(s, "-–—:("); idx >= 0 {
		name = s[:idx]
	}
	name = strings.Trim(name, " \t-–—:,")
	if name == "" {
		name = s
	}

	return types.LanguageItem{
		Language: name,
		Level:    detectLevel(normText(s)),
	}
}

// ParseLanguages maps raw entries to language items, skipping blanks.
func ParseLanguages(raw []string) []types.LanguageItem {
	var out []types.LanguageItem
	for _, r := range raw {
		item := ParseLanguageItem(r)
		if item.Language == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
