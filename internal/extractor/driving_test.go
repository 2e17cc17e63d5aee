package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDrivingCategories_Marker(t *testing.T) {
	cats := ExtractDrivingCategories("Посвідчення водія кат. B, C")
	assert.Equal(t, []string{"B", "C"}, cats)
}

func TestExtractDrivingCategories_EnglishProse(t *testing.T) {
	cats := ExtractDrivingCategories("Drove category B vehicle around the city")
	assert.Equal(t, []string{"B"}, cats)
}

func TestExtractDrivingCategories_CyrillicLetters(t *testing.T) {
	cats := ExtractDrivingCategories("Категорія В, С")
	assert.Equal(t, []string{"B", "C"}, cats)
}

func TestExtractDrivingCategories_BareTokens(t *testing.T) {
	cats := ExtractDrivingCategories("Водійські права BE, CE")
	assert.Equal(t, []string{"BE", "CE"}, cats)
}

func TestExtractDrivingCategories_CanonicalOrder(t *testing.T) {
	cats := ExtractDrivingCategories("кат. D, B, A")
	assert.Equal(t, []string{"A", "B", "D"}, cats)
}

func TestExtractDrivingCategories_MultipleSources(t *testing.T) {
	cats := ExtractDrivingCategories("кат. B", "категорія CE", "Drove category D bus")
	assert.Equal(t, []string{"B", "CE", "D"}, cats)
}

func TestExtractDrivingCategories_Empty(t *testing.T) {
	cats := ExtractDrivingCategories("жодних прав", "")
	assert.NotNil(t, cats, "must serialize as an empty array, not null")
	assert.Empty(t, cats)
}
