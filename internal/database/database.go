package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"casaleon/server/internal/models"
)

// Database is the local lead journal
type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL
	d := &Database{db: db}
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	return d, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// SaveLead inserts a journal row for an accepted lead
func (d *Database) SaveLead(record *models.LeadRecord) error {
	if err := d.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save lead %s: %w", record.ID, err)
	}
	return nil
}

// MarkDelivered flags a lead once at least one notifier accepted it
func (d *Database) MarkDelivered(id string) error {
	result := d.db.Model(&models.LeadRecord{}).Where("id = ?", id).Update("delivered", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark lead %s delivered: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("lead %s not found", id)
	}
	return nil
}

// RecentLeads returns the newest leads first. An empty kind returns every kind.
func (d *Database) RecentLeads(limit int, kind string) ([]models.LeadRecord, error) {
	query := d.db.Order("created_at DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.LeadRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return records, nil
}

// PurgeOlderThan deletes journal rows created before cutoff
func (d *Database) PurgeOlderThan(cutoff time.Time) (int64, error) {
	result := d.db.Where("created_at < ?", cutoff).Delete(&models.LeadRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge leads: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountLeads returns how many leads the journal holds
func (d *Database) CountLeads() (int64, error) {
	var count int64
	if err := d.db.Model(&models.LeadRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}
