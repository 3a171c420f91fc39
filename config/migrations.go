package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"activity-intake-api/models"
)

// schemaMigration tracks which schema versions have been applied.
type schemaMigration struct {
	Version   uint   `gorm:"primaryKey;column:version"`
	AppliedAt string `gorm:"column:applied_at"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	version uint
	name    string
	apply   func(db *gorm.DB) error
}

// The schema is created in one shot from the current model definitions.
// Later changes get a new numbered entry here instead of ad-hoc ALTER scripts.
var migrations = []migration{
	{
		version: 1,
		name:    "create activity_forms",
		apply: func(db *gorm.DB) error {
			return db.AutoMigrate(&models.ActivityForm{})
		},
	},
}

// RunMigrations applies every pending schema migration exactly once.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", m.version).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		log.Printf("Applying migration %d (%s)", m.version, m.name)
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}

		record := schemaMigration{Version: m.version, AppliedAt: time.Now().Format(time.RFC3339)}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
