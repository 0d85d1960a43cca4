// Package checks provides the readiness probes registered by the HTTP server.
package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/database"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/monitoring"
)

const defaultTimeout = 2 * time.Second

// Database pings the database handle.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		return monitoring.ResultFromError(sqlDB.PingContext(probeCtx), time.Since(start))
	})
}

// Schema reports degraded when the admin group is missing, which means migrate never ran
// and nobody can be granted global permissions.
func Schema(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("schema", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		if !db.Migrator().HasTable(&models.Section{}) {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "layout tables missing", Duration: time.Since(start)}
		}

		var admins int64
		err := db.WithContext(probeCtx).Model(&models.Group{}).Where("name = ?", database.AdminGroupName).Count(&admins).Error
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}
		if admins == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "admin group not seeded", Duration: time.Since(start)}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Duration: time.Since(start)}
	})
}

func chooseTimeout(provided time.Duration) time.Duration {
	if provided <= 0 {
		return defaultTimeout
	}
	return provided
}
