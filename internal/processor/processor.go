// Package processor turns one scraped resume payload into the final
// structured career record: role clusters with summed durations, skill
// attributions, driving categories and totals.
package processor

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/extractor"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/semantic"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// ErrMissingSourceURL rejects payloads that cannot be keyed in storage.
var ErrMissingSourceURL = errors.New("processor: payload has no source URL")

// Processor runs the extraction and aggregation pipeline. Safe for
// concurrent use once constructed.
type Processor struct {
	matcher semantic.Matcher
	nowFn   func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithMatcher sets the similarity matcher used for title clustering and
// skill attribution.
func WithMatcher(m semantic.Matcher) Option {
	return func(p *Processor) {
		if m != nil {
			p.matcher = m
		}
	}
}

// WithClock injects the wall clock, so ongoing periods are reproducible
// in tests.
func WithClock(fn func() time.Time) Option {
	return func(p *Processor) {
		if fn != nil {
			p.nowFn = fn
		}
	}
}

// New builds a Processor. Without a matcher it clusters by exact
// normalized-title keys; without a clock option it uses the real clock.
func New(opts ...Option) *Processor {
	p := &Processor{
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process produces the structured record for one payload.
//
// A payload without a source URL is a hard error: the record could not
// be stored anyway. Any panic inside the heuristics is contained here
// and degrades to a best-effort record carrying a processing_failed
// warning, so one malformed resume cannot take down a batch.
func (p *Processor) Process(ctx context.Context, payload *types.ResumePayload) (rec *types.ProcessedResume, err error) {
	if payload == nil || strings.TrimSpace(payload.SourceURL) == "" {
		return nil, ErrMissingSourceURL
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("source_url", payload.SourceURL).
				Msg("recovered while processing resume")
			rec = &types.ProcessedResume{
				DrivingCategories: []string{},
				NormalizedSkills:  []string{},
				ExtractorWarnings: []string{constants.WarnProcessingFailed},
			}
			err = nil
		}
	}()

	now := p.nowFn()
	warnings := []string{}
	if payload.Meta != nil {
		warnings = append(warnings, payload.Meta.Warnings...)
	}

	res := extractor.ExtractPayload(payload.Parsed, now)

	// Entries that lost their title line inherit the declared position.
	for i := range res.WorkItems {
		if strings.TrimSpace(res.WorkItems[i].Title) == "" && res.Position != "" {
			res.WorkItems[i].Title = res.Position
		}
	}

	rec = &types.ProcessedResume{
		NormalizedSkills:    normalizeSkills(res.Skills),
		WorkExperienceItems: res.WorkItems,
		EducationItems:      res.EduItems,
		Languages:           res.Languages,
	}

	monthsByPos, aggErr := AggregateMonthsByTitle(ctx, res.WorkItems, p.matcher)
	if aggErr != nil {
		logger.Warn().Err(aggErr).
			Str("source_url", payload.SourceURL).
			Msg("title clustering failed")
		warnings = append(warnings, constants.WarnProcessingFailed)
	} else {
		rec.MonthsByPosition = monthsByPos
	}

	rec.SkillMonths = BuildSkillMonths(ctx, res.Skills, res.WorkItems, p.matcher)

	texts := []string{strings.Join(res.Skills, "; ")}
	for _, it := range res.WorkItems {
		texts = append(texts, it.Title, it.DutiesText)
	}
	texts = append(texts, sortedKeys(rec.SkillMonths)...)
	rec.DrivingCategories = extractor.ExtractDrivingCategories(texts...)

	rec.TotalWorkYears = extractor.YearsFromMonths(totalWorkMonths(res.WorkItems))
	rec.TotalEduYears = extractor.YearsFromMonths(totalEduMonths(res.EduItems))
	rec.ExtractorWarnings = warnings

	logger.Debug().
		Str("source_url", payload.SourceURL).
		Int("work_items", len(rec.WorkExperienceItems)).
		Int("edu_items", len(rec.EducationItems)).
		Int("position_clusters", len(rec.MonthsByPosition)).
		Msg("processed resume")
	return rec, nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
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
		out = append(out, key)
	}
	return out
}

// totalWorkMonths sums distinct employment spans. Role-split entries
// share one span and must count once.
func totalWorkMonths(items []types.WorkItem) int {
	seen := make(map[string]struct{}, len(items))
	total := 0
	for _, it := range items {
		key := it.Start + "|" + it.End + "|" + it.Company
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		total += it.Months
	}
	return total
}

func totalEduMonths(items []types.EduItem) int {
	total := 0
	for _, it := range items {
		total += it.Months
	}
	return total
}

func sortedKeys(m map[string]int) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
