package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crate/internal/models"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db     *gorm.DB
	logger *zerolog.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger *zerolog.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// Migrate runs database migrations: AutoMigrate for brand-new tables, then an
// additive column pass for every known model so that columns added by a
// later version of the schema appear on an existing database without a
// destructive rewrite.
func (m *MigrationManager) Migrate() error {
	if err := m.db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	if err := m.addMissingColumns(); err != nil {
		return fmt.Errorf("failed to add missing columns: %w", err)
	}

	if m.logger != nil {
		m.logger.Info().Msg("database migrations completed successfully")
	}
	return nil
}

// addMissingColumns walks every model's declared fields and issues an
// ADD COLUMN for anything the live table is missing, forward-only. It never
// renames or drops a column — that is left to a future explicit migration.
func (m *MigrationManager) addMissingColumns() error {
	migrator := m.db.Migrator()

	for _, model := range models.AllModels() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse schema for %T: %w", model, err)
		}

		if !migrator.HasTable(model) {
			continue
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if migrator.HasColumn(model, field.DBName) {
				continue
			}

			if err := migrator.AddColumn(model, field.Name); err != nil {
				return fmt.Errorf("add column %s.%s: %w", stmt.Schema.Table, field.DBName, err)
			}
			if m.logger != nil {
				m.logger.Info().
					Str("table", stmt.Schema.Table).
					Str("column", field.DBName).
					Msg("applied additive migration")
			}
		}
	}

	return nil
}
