package types

import (
	"encoding/json"
	"strings"
)

// ResumePayload is the input document: already-fetched, already-reduced
// resume text split into named sections by the upstream scraping layer.
type ResumePayload struct {
	SourceURL   string          `json:"source_url"`
	RawHTML     string          `json:"raw_html,omitempty"`
	CleanedText string          `json:"cleaned_text,omitempty"`
	Parsed      *ParsedSections `json:"parsed,omitempty"`
	Meta        *PayloadMeta    `json:"meta,omitempty"`
}

// ParsedSections carries the per-section texts of one resume.
type ParsedSections struct {
	Position       string     `json:"position,omitempty"`
	Salary         int        `json:"salary,omitempty"`
	ResumeDate     string     `json:"resume_date,omitempty"`
	WorkExperience string     `json:"work_experience,omitempty"`
	Education      string     `json:"education,omitempty"`
	Skills         StringList `json:"skills,omitempty"`
	Languages      StringList `json:"languages,omitempty"`
}

// PayloadMeta is scraping metadata carried alongside the sections.
type PayloadMeta struct {
	ParseMode string   `json:"parse_mode,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// StringList unmarshals either a JSON array of strings or a single
// comma/semicolon/bullet separated string. Scraped payloads use both
// shapes for skills and languages.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*s = nil
	for _, part := range strings.FieldsFunc(one, func(r rune) bool {
		return r == ',' || r == ';' || r == '•'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

// WorkItem is one parsed employment period.
type WorkItem struct {
	Title      string   `json:"title"`
	Company    string   `json:"company,omitempty"`
	City       string   `json:"city,omitempty"`
	Industry   string   `json:"industry,omitempty"`
	Start      string   `json:"start,omitempty"` // canonical "YYYY-MM"
	End        string   `json:"end,omitempty"`   // "YYYY-MM" or "present"
	Months     int      `json:"months"`
	Duties     []string `json:"duties,omitempty"`
	DutiesText string   `json:"duties_text,omitempty"`
	BlockText  string   `json:"block_text,omitempty"`
}

// EduItem is one parsed education period.
type EduItem struct {
	Place     string `json:"place"`
	Degree    string `json:"degree,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Months    int    `json:"months"`
	Extra     string `json:"extra,omitempty"`
}

// LanguageItem is a language with an optionally resolved proficiency
// level. An unmatched level is kept empty rather than dropping the entry.
type LanguageItem struct {
	Language string `json:"language"`
	Level    string `json:"level,omitempty"`
}

// PositionMonths is one role cluster in the processed output.
type PositionMonths struct {
	Position        string   `json:"position"`         // normalized key
	DisplayPosition string   `json:"display_position"` // stable representative
	Months          int      `json:"months"`
	Years           float64  `json:"years,omitempty"`
	Titles          []string `json:"titles,omitempty"` // sample of raw titles, capped
}

// ExtractResult is the intermediate output of the section extractors,
// before aggregation.
type ExtractResult struct {
	Position  string
	Salary    int
	Skills    []string
	Languages []LanguageItem
	WorkItems []WorkItem
	EduItems  []EduItem
}

// ProcessedResume is the structured record produced for one payload.
// Field names are stable; downstream consumers treat this as an opaque
// document.
type ProcessedResume struct {
	DrivingCategories   []string         `json:"driving_categories"`
	NormalizedSkills    []string         `json:"normalized_skills"`
	SkillMonths         map[string]int   `json:"skill_months,omitempty"`
	WorkExperienceItems []WorkItem       `json:"work_experience_items,omitempty"`
	EducationItems      []EduItem        `json:"education_items,omitempty"`
	Languages           []LanguageItem   `json:"languages,omitempty"`
	TotalWorkYears      float64          `json:"total_work_years,omitempty"`
	TotalEduYears       float64          `json:"total_edu_years,omitempty"`
	MonthsByPosition    []PositionMonths `json:"months_by_position,omitempty"`
	ExtractorWarnings   []string         `json:"extractor_warnings"`
}
