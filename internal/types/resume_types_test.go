package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ArrayShape(t *testing.T) {
	var s StringList
	require.NoError(t, json.Unmarshal([]byte(`["Водіння","Ремонт"]`), &s))
	assert.Equal(t, StringList{"Водіння", "Ремонт"}, s)
}

func TestStringList_PackedStringShape(t *testing.T) {
	var s StringList
	require.NoError(t, json.Unmarshal([]byte(`"Водіння, Ремонт; Монтаж • Демонтаж"`), &s))
	assert.Equal(t, StringList{"Водіння", "Ремонт", "Монтаж", "Демонтаж"}, s)
}

func TestStringList_RejectsOtherShapes(t *testing.T) {
	var s StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}

func TestResumePayload_Decode(t *testing.T) {
	raw := `{
		"source_url": "https://www.work.ua/resumes/1234567/",
		"parsed": {
			"position": "Водій",
			"salary": 25000,
			"skills": "Водіння; Ремонт",
			"languages": ["Англійська — середній"]
		},
		"meta": {"parse_mode": "regex", "warnings": ["truncated_html"]}
	}`

	var p ResumePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "https://www.work.ua/resumes/1234567/", p.SourceURL)
	require.NotNil(t, p.Parsed)
	assert.Equal(t, 25000, p.Parsed.Salary)
	assert.Equal(t, StringList{"Водіння", "Ремонт"}, p.Parsed.Skills)
	assert.Equal(t, "regex", p.Meta.ParseMode)
}
