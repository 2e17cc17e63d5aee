package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// stubMatcher returns canned scores for specific pairs and 0 otherwise.
type stubMatcher struct {
	pairs map[[2]string]float64
}

func (s stubMatcher) Similarity(_ context.Context, a, b string) (float64, error) {
	if v, ok := s.pairs[[2]string{a, b}]; ok {
		return v, nil
	}
	if v, ok := s.pairs[[2]string{b, a}]; ok {
		return v, nil
	}
	return 0, nil
}

type errMatcher struct{ err error }

func (e errMatcher) Similarity(context.Context, string, string) (float64, error) {
	return 0, e.err
}

type panicMatcher struct{}

func (panicMatcher) Similarity(context.Context, string, string) (float64, error) {
	panic("matcher exploded")
}

func driverPayload() *types.ResumePayload {
	return &types.ResumePayload{
		SourceURL: "https://www.work.ua/resumes/1234567/",
		Parsed: &types.ParsedSections{
			Position: "Водій",
			WorkExperience: `Водій
з 01.2020 по 12.2021 (2 роки) ТОВ Транс, Київ
доставка вантажів; кат. B
Водій
з 01.2022 по 12.2022 Власне авто
перевезення`,
			Education: "КПІ\nз 2010 по 2014, бакалавр",
			Skills:    types.StringList{"Доставка вантажів", "Водіння"},
			Languages: types.StringList{"Англійська — середній"},
		},
	}
}

func TestProcess_FullRecord(t *testing.T) {
	p := New(WithClock(testClock))

	rec, err := p.Process(context.Background(), driverPayload())
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.Len(t, rec.WorkExperienceItems, 2)
	assert.Equal(t, 24, rec.WorkExperienceItems[0].Months)
	assert.Equal(t, "ТОВ Транс", rec.WorkExperienceItems[0].Company)
	assert.Equal(t, 12, rec.WorkExperienceItems[1].Months)

	require.Len(t, rec.MonthsByPosition, 1, "equal normalized titles share one cluster")
	cluster := rec.MonthsByPosition[0]
	assert.Equal(t, "водій", cluster.Position)
	assert.Equal(t, "Водій", cluster.DisplayPosition)
	assert.Equal(t, 36, cluster.Months)
	assert.Equal(t, 3.0, cluster.Years)

	assert.Equal(t, []string{"доставка вантажів", "водіння"}, rec.NormalizedSkills)
	assert.Equal(t, map[string]int{"доставка вантажів": 24}, rec.SkillMonths,
		"a duty matching a known skill collects that entry's whole duration")

	assert.Equal(t, []string{"B"}, rec.DrivingCategories)

	assert.Equal(t, 3.0, rec.TotalWorkYears)
	assert.Equal(t, 4.1, rec.TotalEduYears)

	require.Len(t, rec.Languages, 1)
	assert.Equal(t, "середній", rec.Languages[0].Level)

	assert.NotNil(t, rec.ExtractorWarnings)
	assert.Empty(t, rec.ExtractorWarnings)
}

func TestProcess_MissingSourceURL(t *testing.T) {
	p := New(WithClock(testClock))

	rec, err := p.Process(context.Background(), &types.ResumePayload{})
	assert.ErrorIs(t, err, ErrMissingSourceURL)
	assert.Nil(t, rec)

	rec, err = p.Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingSourceURL)
	assert.Nil(t, rec)
}

func TestProcess_ClusteringFailureDegrades(t *testing.T) {
	p := New(
		WithClock(testClock),
		WithMatcher(errMatcher{err: errors.New("endpoint down")}),
	)
	payload := driverPayload()
	payload.Parsed.WorkExperience = `Водій
з 01.2020 по 12.2021 ТОВ Транс
доставка
Шофер
з 01.2022 по 12.2022 Автопарк
перевезення`

	rec, err := p.Process(context.Background(), payload)
	require.NoError(t, err, "a degraded record is still a record")
	require.NotNil(t, rec)
	assert.Nil(t, rec.MonthsByPosition)
	assert.Contains(t, rec.ExtractorWarnings, constants.WarnProcessingFailed)
	assert.Len(t, rec.WorkExperienceItems, 2, "extraction output survives the clustering failure")
}

func TestProcess_PanicRecovered(t *testing.T) {
	p := New(WithClock(testClock), WithMatcher(panicMatcher{}))
	payload := driverPayload()
	payload.Parsed.WorkExperience = "Водій\nз 01.2020 по 12.2021 ТОВ Транс\nдоставка\nШофер\nз 01.2022 по 12.2022 Автопарк\nперевезення"

	rec, err := p.Process(context.Background(), payload)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{constants.WarnProcessingFailed}, rec.ExtractorWarnings)
}

func TestProcess_MetaWarningsCarried(t *testing.T) {
	p := New(WithClock(testClock))
	payload := driverPayload()
	payload.Meta = &types.PayloadMeta{Warnings: []string{"truncated_html"}}

	rec, err := p.Process(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"truncated_html"}, rec.ExtractorWarnings)
}

func TestProcess_BackfillsMissingTitle(t *testing.T) {
	p := New(WithClock(testClock))
	payload := &types.ResumePayload{
		SourceURL: "https://www.work.ua/resumes/7654321/",
		Parsed: &types.ParsedSections{
			Position:       "Вантажник",
			WorkExperience: "з 01.2019 по 03.2020 - ТОВ Транс",
		},
	}

	rec, err := p.Process(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, rec.WorkExperienceItems, 1)
	assert.Equal(t, "ТОВ Транс", rec.WorkExperienceItems[0].Company)
	assert.Equal(t, "Вантажник", rec.WorkExperienceItems[0].Title,
		"company-only entries inherit the declared position")
}

func TestProcess_Deterministic(t *testing.T) {
	p := New(WithClock(testClock))

	first, err := p.Process(context.Background(), driverPayload())
	require.NoError(t, err)
	second, err := p.Process(context.Background(), driverPayload())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
