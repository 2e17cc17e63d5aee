package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersokol/workua-resume-toolkit/internal/constants"
)

func TestDetectDegreeLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"незакінчена вища освіта", "незакінчена вища"},
		{"неповна вища", "незакінчена вища"},
		{"з 2015 по 2019, вища, менеджмент", "вища"},
		{"высшее образование", "вища"},
		{"среднее специальное", "середня спеціальна"},
		{"середня школа", "середня"},
		{"бакалавр", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectDegreeLevel(c.in), "input %q", c.in)
	}
}

func TestParseEducation_YearRangeWithQualifiers(t *testing.T) {
	text := "Київський національний університет\nз 2015 по 2019, вища, комп'ютерні науки"

	items := ParseEducation(text, testNow)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Київський національний університет", item.Place)
	assert.Equal(t, "вища", item.Degree)
	assert.Equal(t, "комп'ютерні науки", item.Specialty)
	assert.Equal(t, "2015-01", item.Start)
	assert.Equal(t, "2019-12", item.End)
	assert.Equal(t, 49, item.Months)
}

func TestParseEducation_OngoingStudies(t *testing.T) {
	text := "Львівська політехніка\nз 2021 по нині, незакінчена вища"

	items := ParseEducation(text, testNow)
	require.Len(t, items, 1)
	assert.Equal(t, "Львівська політехніка", items[0].Place)
	assert.Equal(t, "незакінчена вища", items[0].Degree,
		"incomplete higher outranks the plain higher keyword it contains")
	assert.Equal(t, constants.Present, items[0].End)
	assert.Equal(t, CalcMonths("2021-01", "2026-08"), items[0].Months)
}

func TestParseEducation_MonthPrecision(t *testing.T) {
	text := "Автотранспортний технікум\nз 09.2010 по 06.2014, водій категорії C"

	items := ParseEducation(text, testNow)
	require.Len(t, items, 1)
	assert.Equal(t, "Автотранспортний технікум", items[0].Place)
	assert.Equal(t, "2010-09", items[0].Start)
	assert.Equal(t, "2014-06", items[0].End)
	assert.Equal(t, 46, items[0].Months)
}

func TestParseEducation_ParenCounterStripped(t *testing.T) {
	text := "ХНУРЕ\nз 2015 по 2019 (4 роки), вища"

	items := ParseEducation(text, testNow)
	require.Len(t, items, 1)
	assert.Equal(t, "вища", items[0].Degree)
	assert.Equal(t, 49, items[0].Months)
}

func TestParseEducation_MultipleEntries(t *testing.T) {
	text := `Школа №5
з 2000 по 2010
Київський національний університет
з 2010 по 2016, вища, автоматизація`

	items := ParseEducation(text, testNow)
	require.Len(t, items, 2)
	assert.Equal(t, "Школа №5", items[0].Place)
	assert.Equal(t, "Київський національний університет", items[1].Place)
	assert.Equal(t, "вища", items[1].Degree)
	assert.Equal(t, "автоматизація", items[1].Specialty)
}

func TestParseEducation_InstitutionLineFlushesPrevious(t *testing.T) {
	text := `Національна академія управління
Одеський університет
з 2000 по 2005, вища, право`

	items := ParseEducation(text, testNow)
	require.Len(t, items, 2,
		"an undated institution line closes the open entry instead of feeding its specialty")
	assert.Equal(t, "Національна академія управління", items[0].Place)
	assert.Empty(t, items[0].Specialty)
	assert.Equal(t, "Одеський університет", items[1].Place)
	assert.Equal(t, "вища", items[1].Degree)
	assert.Equal(t, "право", items[1].Specialty)
}

func TestParseEducation_DetailLinesFillSpecialtyThenExtra(t *testing.T) {
	text := "КНЕУ\nз 2012 по 2016, вища\nфінанси\nдиплом з відзнакою"

	items := ParseEducation(text, testNow)
	require.Len(t, items, 1)
	assert.Equal(t, "КНЕУ", items[0].Place)
	assert.Equal(t, "фінанси", items[0].Specialty)
	assert.Equal(t, "диплом з відзнакою", items[0].Extra)
}

func TestParseEducation_Empty(t *testing.T) {
	assert.Empty(t, ParseEducation("", testNow))
	assert.Empty(t, ParseEducation("без дат і назв", testNow))
}
