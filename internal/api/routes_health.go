package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/handlers"
	"github.com/charlesng35/boardsync/internal/monitoring"
	"github.com/charlesng35/boardsync/internal/monitoring/checks"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB) {
	readiness := monitoring.NewHealthManager(
		checks.Database(db, 0),
		checks.Schema(db, 0),
	)

	r.GET("/health", handlers.Health())
	r.GET("/health/live", handlers.Health())
	r.GET("/health/ready", handlers.Ready(readiness))
}
