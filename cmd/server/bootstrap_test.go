package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/boardsync/internal/app"
	"github.com/charlesng35/boardsync/internal/database"
	"github.com/charlesng35/boardsync/internal/models"
)

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	cfg := &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "boards.sqlite")},
		Metrics:  app.MetricsConfig{Enabled: true},
	}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)

	log := zap.NewNop()
	stack, err := bootstrapRuntime(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(log) })

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var admins models.Group
	require.NoError(t, stack.DB.Where("name = ?", database.AdminGroupName).First(&admins).Error)
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := &app.Config{Database: app.DatabaseConfig{Driver: "oracle"}}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)

	_, err = bootstrapRuntime(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\nlayout:\n  apply_strategy: batch\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, app.ApplyStrategyBatch, cfg.Layout.ApplyStrategy)

	_, err = loadApplicationConfig(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
