package database

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// configurePool applies connection pool limits for server databases.
func configurePool(db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(portOr(parseIntOption(cfg.Options, "max_open_conns"), defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(portOr(parseIntOption(cfg.Options, "max_idle_conns"), defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
	return nil
}

// mergeOptions overlays user options on top of driver defaults, dropping pool keys.
func mergeOptions(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		out[key] = value
	}
	for key, value := range overrides {
		if isPoolOption(key) {
			continue
		}
		out[key] = value
	}
	return out
}

func sortedOptions(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+options[key])
	}
	return out
}

func isPoolOption(key string) bool {
	return key == "max_open_conns" || key == "max_idle_conns"
}

func parseIntOption(options map[string]string, key string) int {
	raw := strings.TrimSpace(options[key])
	if raw == "" {
		return 0
	}
	var value int
	if _, err := fmt.Sscanf(raw, "%d", &value); err != nil {
		return 0
	}
	return value
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func portOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
