package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/storage/models"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// ErrResumeNotFound is returned when an update targets a source URL
// that was never stored.
var ErrResumeNotFound = errors.New("storage: resume not found")

// MySQL is the resume store.
type MySQL struct {
	db *gorm.DB
}

// NewMySQL connects, applies pool settings and migrates the schema.
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql pool: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.AutoMigrate(&models.Resume{}); err != nil {
		return nil, fmt.Errorf("migrate resumes: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("mysql connected")
	return &MySQL{db: db}, nil
}

// DB exposes the underlying gorm handle.
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate re-runs the schema migration, for the migrate subcommand.
func (m *MySQL) Migrate() error {
	return m.db.AutoMigrate(&models.Resume{})
}

// payloadRow maps a scraped payload onto its table row.
func payloadRow(payload *types.ResumePayload) (models.Resume, error) {
	row := models.Resume{
		SourceURL:   payload.SourceURL,
		RawHTML:     payload.RawHTML,
		CleanedText: payload.CleanedText,
	}
	if payload.CleanedText != "" {
		row.CleanedTextMD5 = MD5Hex(payload.CleanedText)
	}
	if payload.Meta != nil {
		row.ParseMode = payload.Meta.ParseMode
		if len(payload.Meta.Warnings) > 0 {
			data, err := json.Marshal(payload.Meta.Warnings)
			if err != nil {
				return row, fmt.Errorf("marshal warnings: %w", err)
			}
			row.Warnings = datatypes.JSON(data)
		}
	}
	if payload.Parsed != nil {
		data, err := json.Marshal(payload.Parsed)
		if err != nil {
			return row, fmt.Errorf("marshal parsed sections: %w", err)
		}
		row.ParsedJSON = datatypes.JSON(data)
	}
	return row, nil
}

// UpsertPayload stores or refreshes a scraped payload. A later scrape
// of the same source URL replaces the payload columns but keeps any
// processed record until SetProcessed overwrites it.
func (m *MySQL) UpsertPayload(ctx context.Context, payload *types.ResumePayload) error {
	row, err := payloadRow(payload)
	if err != nil {
		return err
	}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"raw_html", "cleaned_text", "cleaned_text_md5",
			"parse_mode", "warnings", "parsed_json", "updated_at",
		}),
	}).Create(&row).Error
}

// SetProcessed attaches the processed record to a stored resume.
func (m *MySQL) SetProcessed(ctx context.Context, sourceURL string, record *types.ProcessedResume) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal processed record: %w", err)
	}
	now := time.Now()
	res := m.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("source_url = ?", sourceURL).
		Updates(map[string]interface{}{
			"processed_json": datatypes.JSON(data),
			"processed_at":   &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrResumeNotFound, sourceURL)
	}
	return nil
}

// GetBySourceURL loads one stored resume.
func (m *MySQL) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Resume, error) {
	var row models.Resume
	err := m.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrResumeNotFound, sourceURL)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListUnprocessed returns stored payloads that have no processed
// record yet, oldest first.
func (m *MySQL) ListUnprocessed(ctx context.Context, limit int) ([]models.Resume, error) {
	var rows []models.Resume
	q := m.db.WithContext(ctx).
		Where("processed_json IS NULL").
		Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ResumeStats is the output of the stats subcommand.
type ResumeStats struct {
	Total     int64 `json:"total"`
	Processed int64 `json:"processed"`
	Pending   int64 `json:"pending"`
}

// Stats counts stored and processed resumes.
func (m *MySQL) Stats(ctx context.Context) (*ResumeStats, error) {
	var stats ResumeStats
	if err := m.db.WithContext(ctx).Model(&models.Resume{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := m.db.WithContext(ctx).Model(&models.Resume{}).
		Where("processed_json IS NOT NULL").
		Count(&stats.Processed).Error; err != nil {
		return nil, err
	}
	stats.Pending = stats.Total - stats.Processed
	return &stats, nil
}
