// Package models holds the gorm table definitions of the resume store.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resume is one scraped resume, keyed by its source URL. The scraped
// payload and the processed record are kept side by side as JSON so a
// reprocessing run can always start from the stored payload.
type Resume struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	SourceURL      string         `gorm:"type:varchar(512);not null;uniqueIndex:idx_resumes_source_url"`
	RawHTML        string         `gorm:"type:longtext"`
	CleanedText    string         `gorm:"type:longtext"`
	CleanedTextMD5 string         `gorm:"type:char(32);index:idx_resumes_cleaned_md5"`
	ParseMode      string         `gorm:"type:varchar(50)"`
	Warnings       datatypes.JSON `gorm:"type:json"`
	ParsedJSON     datatypes.JSON `gorm:"type:json"`
	ProcessedJSON  datatypes.JSON `gorm:"type:json"`
	ProcessedAt    *time.Time     `gorm:"type:datetime(6)"`
	CreatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Resume) TableName() string {
	return "resumes"
}
