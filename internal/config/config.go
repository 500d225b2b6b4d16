package config

import (
	"strings"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Source
		Target
		Import
		Admin
	}

	Source struct {
		DatabasePath string
	}
	Target struct {
		DatabasePath string
	}
	Import struct {
		BatchSize          int
		ExcludedCategories []string // Source category names left behind
		Schedule           string   // Cron format: "" = run once
	}
	Admin struct {
		Username string
		Email    string // Empty disables admin bootstrap
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("source_database_path", DefaultSourceDatabasePath)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("batch_size", 1000)
	v.SetDefault("excluded_categories", "")
	v.SetDefault("migrate_schedule", "")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_email", "")

	return &Config{
		Source: Source{
			DatabasePath: v.GetString("SOURCE_DATABASE_PATH"),
		},
		Target: Target{
			DatabasePath: v.GetString("DATABASE_PATH"),
		},
		Import: Import{
			BatchSize:          v.GetInt("BATCH_SIZE"),
			ExcludedCategories: splitList(v.GetString("EXCLUDED_CATEGORIES")),
			Schedule:           v.GetString("MIGRATE_SCHEDULE"),
		},
		Admin: Admin{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
		},
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
