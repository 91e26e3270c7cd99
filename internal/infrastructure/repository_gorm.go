package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// journalFilters are the columns FindAll accepts as filter keys
var journalFilters = map[string]bool{
	"status":     true,
	"run_id":     true,
	"feed_title": true,
}

// GormJournalRepository implements DownloadRepository on top of gorm
type GormJournalRepository struct {
	db *gorm.DB
}

// Dialector returns the gorm dialector for a journal driver name
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported journal driver: %q", driver)
	}
}

// NewJournalRepository opens the journal database and migrates the schema
func NewJournalRepository(config *domain.JournalConfig) (*GormJournalRepository, error) {
	if config.Driver == "sqlite" || config.Driver == "" {
		if dir := filepath.Dir(config.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
	}

	dialector, err := Dialector(config.Driver, config.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormJournalRepository{db: db}, nil
}

// NewJournalRepositoryFromDB wraps an already opened and migrated database
func NewJournalRepositoryFromDB(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Create stores a new journal entry
func (r *GormJournalRepository) Create(record *domain.DownloadRecord) error {
	return r.db.Create(record).Error
}

// FindByID finds a journal entry by ID
func (r *GormJournalRepository) FindByID(id string) (*domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByRun returns every entry of a run in the order they were written
func (r *GormJournalRepository) FindByRun(runID string) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	err := r.db.Where("run_id = ?", runID).Order("created_at ASC").Find(&records).Error
	return records, err
}

// FindAll finds entries with optional filters, newest first
func (r *GormJournalRepository) FindAll(filters map[string]interface{}) ([]*domain.DownloadRecord, error) {
	query := r.db
	for key, value := range filters {
		if !journalFilters[key] {
			return nil, fmt.Errorf("unsupported filter: %q", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	var records []*domain.DownloadRecord
	err := query.Order("created_at DESC").Find(&records).Error
	return records, err
}

// Count returns the total number of entries
func (r *GormJournalRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.DownloadRecord{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of entries with the given status
func (r *GormJournalRepository) CountByStatus(status domain.DownloadStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.DownloadRecord{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetStats returns journal statistics
func (r *GormJournalRepository) GetStats() (*domain.DownloadStats, error) {
	stats := &domain.DownloadStats{}

	if err := r.db.Model(&domain.DownloadRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusDownloaded:
			stats.Downloaded = sc.Count
		case domain.StatusSkipped:
			stats.Skipped = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	if err := r.db.Model(&domain.DownloadRecord{}).
		Distinct("run_id").
		Count(&stats.Runs).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// Close closes the database connection
func (r *GormJournalRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
