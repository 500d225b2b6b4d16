// Package database owns the target discussion platform's persistence:
// connection setup, schema migration and the site-wide settings the
// migration engine toggles. Per-entity operations live in the
// users, categories and posts sub-packages.
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forumbridge/migrator/internal/entities"
)

// ThrottleSetting is the site setting that gates creation rate limiting.
const ThrottleSetting = "throttle_enabled"

type Database struct {
	DB *gorm.DB
}

func New(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Category{},
		&entities.Topic{},
		&entities.Post{},
		&entities.UserCustomField{},
		&entities.CategoryCustomField{},
		&entities.PostCustomField{},
		&entities.SiteSetting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.seedSettings(); err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Printf("target database initialized at %s", dbPath)
	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedSettings() error {
	var existing entities.SiteSetting
	result := d.DB.Where("name = ?", ThrottleSetting).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		setting := entities.SiteSetting{Name: ThrottleSetting, Value: "t"}
		if err := d.DB.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to create setting %s: %w", ThrottleSetting, err)
		}
	}
	return nil
}

// SetThrottleEnabled flips the platform's creation rate limiting. The
// migration disables it on entry and restores it on every exit path.
func (d *Database) SetThrottleEnabled(enabled bool) error {
	value := "f"
	if enabled {
		value = "t"
	}
	return d.DB.Model(&entities.SiteSetting{}).
		Where("name = ?", ThrottleSetting).
		Updates(map[string]any{"value": value, "updated_at": time.Now()}).Error
}

// ThrottleEnabled reports the current throttle setting.
func (d *Database) ThrottleEnabled() (bool, error) {
	var setting entities.SiteSetting
	if err := d.DB.Where("name = ?", ThrottleSetting).First(&setting).Error; err != nil {
		return false, err
	}
	return setting.Value == "t", nil
}
