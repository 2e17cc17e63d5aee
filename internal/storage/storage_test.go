package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

func TestMD5Hex(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", MD5Hex(""))
	assert.Equal(t, MD5Hex("текст"), MD5Hex("текст"))
	assert.NotEqual(t, MD5Hex("a"), MD5Hex("b"))
	assert.Len(t, MD5Hex("anything"), 32)
}

func TestPayloadRow(t *testing.T) {
	payload := &types.ResumePayload{
		SourceURL:   "https://www.work.ua/resumes/1234567/",
		CleanedText: "Водій. Досвід 5 років.",
		Parsed: &types.ParsedSections{
			Position: "Водій",
			Skills:   types.StringList{"Водіння"},
		},
		Meta: &types.PayloadMeta{
			ParseMode: "regex",
			Warnings:  []string{"truncated_html"},
		},
	}

	row, err := payloadRow(payload)
	require.NoError(t, err)

	assert.Equal(t, payload.SourceURL, row.SourceURL)
	assert.Equal(t, MD5Hex(payload.CleanedText), row.CleanedTextMD5)
	assert.Equal(t, "regex", row.ParseMode)

	var sections types.ParsedSections
	require.NoError(t, json.Unmarshal(row.ParsedJSON, &sections))
	assert.Equal(t, "Водій", sections.Position)

	var warnings []string
	require.NoError(t, json.Unmarshal(row.Warnings, &warnings))
	assert.Equal(t, []string{"truncated_html"}, warnings)
}

func TestPayloadRow_EmptyCleanedText(t *testing.T) {
	row, err := payloadRow(&types.ResumePayload{SourceURL: "https://www.work.ua/resumes/1/"})
	require.NoError(t, err)
	assert.Empty(t, row.CleanedTextMD5, "no hash for missing text")
	assert.Empty(t, row.ParsedJSON)
}
