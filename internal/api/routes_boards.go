package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/internal/handlers"
	"github.com/charlesng35/boardsync/internal/middleware"
	"github.com/charlesng35/boardsync/internal/permissions"
)

// Board routes check tiers inside the services so that a missing and a forbidden board
// produce the same response.
func registerBoardRoutes(api *gin.RouterGroup, boardHandler *handlers.BoardHandler, layoutHandler *handlers.LayoutHandler) {
	api.GET("/board-names/:name", boardHandler.GetByName)

	boards := api.Group("/boards")
	{
		boards.POST("", middleware.RequirePermission(permissions.BoardCreate), boardHandler.Create)
		boards.GET("/:id", boardHandler.Get)
		boards.DELETE("/:id", boardHandler.Delete)
		boards.PUT("/:id/settings", boardHandler.UpdateSettings)
		boards.PUT("/:id/visibility", boardHandler.SetVisibility)
		boards.PUT("/:id/name", boardHandler.Rename)
		boards.GET("/:id/grants", boardHandler.ListGrants)
		boards.PUT("/:id/grants", boardHandler.ReplaceGrants)
		boards.GET("/:id/audit", boardHandler.ListAudit)

		boards.GET("/:id/layout", layoutHandler.Get)
		boards.PUT("/:id/layout", layoutHandler.Save)
		boards.POST("/:id/layout/plan", layoutHandler.Plan)
		boards.PUT("/:id/sections/:sectionID/collapse", layoutHandler.Collapse)
	}
}
