package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

func TestExtractPayload(t *testing.T) {
	sections := &types.ParsedSections{
		Position: "Водій-експедитор",
		Salary:   25000,
		WorkExperience: `Водій
з 10.2019 по 02.2022 (2 роки 5 місяців) Ostriv, Киев (Розничная торговля)
Доставка товарів по місту.`,
		Education: "КПІ\nз 2010 по 2016, магістр",
		Skills:    types.StringList{"Водіння (кат. B, C), ремонт", "Ремонт"},
		Languages: types.StringList{"Англійська — середній"},
	}

	res := ExtractPayload(sections, testNow)

	assert.Equal(t, "Водій-експедитор", res.Position)
	assert.Equal(t, 25000, res.Salary)
	assert.Equal(t, []string{"Водіння (кат. B, C)", "ремонт"}, res.Skills,
		"packed entries are flattened and case-insensitive repeats dropped")

	require.Len(t, res.WorkItems, 1)
	assert.Equal(t, "Водій", res.WorkItems[0].Title)

	require.Len(t, res.EduItems, 1)
	assert.Equal(t, "КПІ", res.EduItems[0].Place)

	require.Len(t, res.Languages, 1)
	assert.Equal(t, "середній", res.Languages[0].Level)
}

func TestExtractPayload_PositionFallback(t *testing.T) {
	sections := &types.ParsedSections{
		WorkExperience: "Посада: Комірник\nз 01.2020 по 06.2021 Склад-Сервіс",
	}
	res := ExtractPayload(sections, testNow)
	assert.Equal(t, "Комірник", res.Position)
}

func TestExtractPayload_NilSections(t *testing.T) {
	res := ExtractPayload(nil, testNow)
	assert.Empty(t, res.Skills)
	assert.Empty(t, res.WorkItems)
}
