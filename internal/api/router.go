package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/app"
	iauth "github.com/charlesng35/boardsync/internal/auth"
	"github.com/charlesng35/boardsync/internal/handlers"
	"github.com/charlesng35/boardsync/internal/middleware"
	"github.com/charlesng35/boardsync/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the board routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	applier, err := services.NewLayoutApplier(db, cfg.Layout.ApplyStrategy)
	if err != nil {
		return nil, err
	}
	layoutSvc, err := services.NewLayoutService(db, applier)
	if err != nil {
		return nil, err
	}
	principals, err := services.NewPrincipalService(db, nil)
	if err != nil {
		return nil, err
	}
	boardHandler, err := handlers.NewBoardHandler(db)
	if err != nil {
		return nil, err
	}
	integrationHandler, err := handlers.NewIntegrationHandler(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, db)

	// Anonymous callers reach public boards; a token that is sent must be valid.
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(jwt), middleware.ResolvePrincipal(principals))

	registerBoardRoutes(api, boardHandler, handlers.NewLayoutHandler(layoutSvc))
	registerIntegrationRoutes(api, integrationHandler)

	if cfg.Metrics.Enabled {
		endpoint := cfg.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
