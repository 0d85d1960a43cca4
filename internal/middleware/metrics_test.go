package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/boardsync/pkg/metrics"
)

func TestRouteResource(t *testing.T) {
	cases := map[string]string{
		"/api/boards":                                  resourceBoard,
		"/api/boards/:id":                              resourceBoard,
		"/api/boards/:id/settings":                     resourceBoard,
		"/api/board-names/:name":                       resourceBoard,
		"/api/boards/:id/layout":                       resourceLayout,
		"/api/boards/:id/layout/plan":                  resourceLayout,
		"/api/boards/:id/sections/:sectionID/collapse": resourceSection,
		"/api/boards/:id/grants":                       resourceGrants,
		"/api/boards/:id/audit":                        resourceAudit,
		"/api/integrations/:id/grants":                 resourceIntegration,
		"/health/ready":                                resourceHealth,
		"/metrics":                                     resourceOther,
		unmatchedRoute:                                 resourceOther,
	}
	for route, want := range cases {
		require.Equal(t, want, routeResource(route), route)
	}
}

func TestRequestOutcome(t *testing.T) {
	require.Equal(t, "ok", requestOutcome(http.StatusOK))
	require.Equal(t, "ok", requestOutcome(http.StatusNoContent))
	require.Equal(t, "not_found", requestOutcome(http.StatusNotFound))
	require.Equal(t, "denied", requestOutcome(http.StatusUnauthorized))
	require.Equal(t, "denied", requestOutcome(http.StatusForbidden))
	require.Equal(t, "rejected", requestOutcome(http.StatusBadRequest))
	require.Equal(t, "error", requestOutcome(http.StatusInternalServerError))
}

func TestMetricsCountsBoardResources(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.PUT("/api/boards/:id/layout", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	r.GET("/api/boards/:id/audit", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	layoutDenied := metrics.BoardAPIRequests.WithLabelValues(resourceLayout, "not_found")
	auditOK := metrics.BoardAPIRequests.WithLabelValues(resourceAudit, "ok")
	unmatched := metrics.BoardAPIRequests.WithLabelValues(resourceOther, "not_found")
	beforeLayout := promtestutil.ToFloat64(layoutDenied)
	beforeAudit := promtestutil.ToFloat64(auditOK)
	beforeUnmatched := promtestutil.ToFloat64(unmatched)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPut, "/api/boards/b1/layout", nil),
		httptest.NewRequest(http.MethodGet, "/api/boards/b1/audit", nil),
		httptest.NewRequest(http.MethodGet, "/api/boards/b1/unknown", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Equal(t, beforeLayout+1, promtestutil.ToFloat64(layoutDenied))
	require.Equal(t, beforeAudit+1, promtestutil.ToFloat64(auditOK))
	require.Equal(t, beforeUnmatched+1, promtestutil.ToFloat64(unmatched))
}
