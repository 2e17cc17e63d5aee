package processor

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/extractor"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/semantic"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

var (
	reTitlePunct = regexp.MustCompile(`[\(\)\[\],.;:]+`)
	reWS         = regexp.MustCompile(`\s+`)
)

// NormSkill reduces a raw skill string to its aggregation key.
func NormSkill(s string) string {
	return reWS.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// NormTitle reduces a raw job title to its clustering key: lowercased,
// punctuation collapsed to spaces.
func NormTitle(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = reTitlePunct.ReplaceAllString(t, " ")
	return strings.TrimSpace(reWS.ReplaceAllString(t, " "))
}

type titleCluster struct {
	key     string // normalized key of the representative
	display string // stable raw representative
	months  int
	titles  []string
	seen    map[string]struct{}
}

func (c *titleCluster) add(title string, months int) {
	c.months += months
	low := strings.ToLower(title)
	if _, ok := c.seen[low]; !ok && len(c.titles) < constants.ClusterTitlesSample {
		c.seen[low] = struct{}{}
		c.titles = append(c.titles, title)
	}
	// The shortest raw title makes the most readable representative.
	if utf8.RuneCountInString(title) < utf8.RuneCountInString(c.display) {
		c.display = title
		if k := NormTitle(title); k != "" {
			c.key = k
		}
	}
}

// AggregateMonthsByTitle groups employment entries into role clusters
// and sums their durations. Entries with an empty title or non-positive
// duration are skipped.
//
// Without a matcher, entries bucket by exact normalized-title key.
// With a matcher, each entry's raw title is scored against every
// cluster's representative and the entry joins the highest-scoring
// cluster at or above the clustering threshold; equal scores keep the
// earlier cluster, since only a strictly greater score displaces the
// best candidate. A matcher error aborts the whole aggregation, the
// caller decides how to degrade.
//
// The result is sorted by months descending, then by key, so repeated
// runs over one resume produce identical output.
func AggregateMonthsByTitle(ctx context.Context, items []types.WorkItem, matcher semantic.Matcher) ([]types.PositionMonths, error) {
	var clusters []*titleCluster
	index := make(map[string]*titleCluster)

	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" || it.Months <= 0 {
			continue
		}
		key := NormTitle(title)
		if key == "" {
			continue
		}

		var cl *titleCluster
		if matcher == nil {
			cl = index[key]
		} else {
			best := 0.0
			for _, cand := range clusters {
				score, err := matcher.Similarity(ctx, title, cand.display)
				if err != nil {
					return nil, fmt.Errorf("cluster title %q: %w", title, err)
				}
				if score > best {
					best, cl = score, cand
				}
			}
			if best < constants.TitleClusterThreshold {
				cl = nil
			}
		}
		if cl == nil {
			cl = &titleCluster{key: key, display: title, seen: make(map[string]struct{})}
			clusters = append(clusters, cl)
			if matcher == nil {
				index[key] = cl
			}
		}
		cl.add(title, it.Months)
	}

	out := make([]types.PositionMonths, 0, len(clusters))
	for _, cl := range clusters {
		titles := append([]string(nil), cl.titles...)
		sort.Strings(titles)
		out = append(out, types.PositionMonths{
			Position:        cl.key,
			DisplayPosition: cl.display,
			Months:          cl.months,
			Years:           extractor.YearsFromMonths(cl.months),
			Titles:          titles,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Months != out[j].Months {
			return out[i].Months > out[j].Months
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// BuildSkillMonths attributes employment durations to skills, duty by
// duty. Each duty credits the whole duration of its owning entry to at
// most one skill: the first exact normalized match, or, with a matcher,
// the single best-scoring skill at or above the skill threshold.
// Entries with non-positive duration are skipped. Matcher errors are
// logged per pair and the pair is skipped; one flaky comparison must
// not sink the rest of the attribution.
func BuildSkillMonths(ctx context.Context, skills []string, items []types.WorkItem, matcher semantic.Matcher) map[string]int {
	type knownSkill struct {
		key string
		raw string
	}
	var known []knownSkill
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		key := NormSkill(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		known = append(known, knownSkill{key: key, raw: s})
	}
	if len(known) == 0 || len(items) == 0 {
		return nil
	}

	out := make(map[string]int)
	for _, it := range items {
		if it.Months <= 0 {
			continue
		}
		for _, duty := range it.Duties {
			duty = strings.TrimSpace(duty)
			if duty == "" {
				continue
			}

			dutyKey := NormSkill(duty)
			matched := false
			for _, ks := range known {
				if dutyKey == ks.key {
					out[ks.key] += it.Months
					matched = true
					break
				}
			}
			if matched || matcher == nil {
				continue
			}

			bestKey, best := "", 0.0
			for _, ks := range known {
				score, err := matcher.Similarity(ctx, duty, ks.raw)
				if err != nil {
					logger.Warn().Err(err).
						Str("skill", ks.key).
						Msg("skill similarity lookup failed, pair skipped")
					continue
				}
				if score > best {
					best, bestKey = score, ks.key
				}
			}
			if bestKey != "" && best >= constants.SkillMatchThreshold {
				out[bestKey] += it.Months
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
