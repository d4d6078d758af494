package repository

import (
	"context"
	"time"

	"golang-quote-agent/internal/entity"

	"gorm.io/gorm"
)

// ScrapeRecordRepository defines the interface for scrape history persistence.
type ScrapeRecordRepository interface {
	Create(ctx context.Context, record *entity.ScrapeRecord) error
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.ScrapeRecord, error)
	FindRecent(ctx context.Context, limit int) ([]entity.ScrapeRecord, error)
	SuccessRateSince(ctx context.Context, symbol string, since time.Time) (total int64, successful int64, err error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewScrapeRecordRepository creates a new GORM-based scrape record repository.
func NewScrapeRecordRepository(db *gorm.DB) ScrapeRecordRepository {
	return &scrapeRecordRepository{db: db}
}

type scrapeRecordRepository struct {
	db *gorm.DB
}

// Create persists one scrape outcome.
func (r *scrapeRecordRepository) Create(ctx context.Context, record *entity.ScrapeRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindBySymbol retrieves the most recent records for one symbol.
func (r *scrapeRecordRepository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.ScrapeRecord, error) {
	var records []entity.ScrapeRecord
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindRecent retrieves the most recent records across all symbols.
func (r *scrapeRecordRepository) FindRecent(ctx context.Context, limit int) ([]entity.ScrapeRecord, error) {
	var records []entity.ScrapeRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SuccessRateSince counts total and successful scrapes since a point in time.
// An empty symbol counts across all symbols.
func (r *scrapeRecordRepository) SuccessRateSince(ctx context.Context, symbol string, since time.Time) (int64, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ScrapeRecord{}).Where("created_at >= ?", since)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	var successful int64
	if err := query.Where("success = ?", true).Count(&successful).Error; err != nil {
		return 0, 0, err
	}
	return total, successful, nil
}

// DeleteOlderThan removes records created before cutoff, returning the count.
func (r *scrapeRecordRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&entity.ScrapeRecord{})
	return result.RowsAffected, result.Error
}
