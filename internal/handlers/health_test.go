package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/boardsync/internal/handlers"
	"github.com/charlesng35/boardsync/internal/handlers/testutil"
	"github.com/charlesng35/boardsync/internal/monitoring"
)

func TestReadyReportsDownProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	broken := monitoring.NewCheck("cache", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "refused"}
	})
	r := gin.New()
	r.GET("/ready", handlers.Ready(monitoring.NewHealthManager(broken)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "NOT_READY", resp.Error.Code)
}

func TestReadyListsProbes(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report monitoring.HealthReport
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &report)
	require.True(t, report.Ready)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "schema", report.Checks[1].Component)
}
