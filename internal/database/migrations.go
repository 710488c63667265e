package database

import (
	"fmt"

	"casaleon/server/internal/models"
)

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.LeadRecord{}); err != nil {
		return fmt.Errorf("failed to migrate leads table: %w", err)
	}

	// Index for RecentLeads
	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_leads_kind_created
		ON leads(kind, created_at);
	`).Error; err != nil {
		return fmt.Errorf("failed to create leads index: %w", err)
	}

	return nil
}
