package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/internal/handlers"
	"github.com/charlesng35/boardsync/internal/middleware"
	"github.com/charlesng35/boardsync/internal/permissions"
)

func registerIntegrationRoutes(api *gin.RouterGroup, integrationHandler *handlers.IntegrationHandler) {
	integrations := api.Group("/integrations")
	integrations.Use(middleware.RequirePermission(permissions.IntegrationFullAll))
	{
		integrations.POST("", integrationHandler.Create)
		integrations.PUT("/:id/grants", integrationHandler.Grant)
	}
}
