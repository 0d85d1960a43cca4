package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/pkg/metrics"
)

// Route label used when no route matched, so raw board ids never become label values.
const unmatchedRoute = "unmatched"

// Board API resources a route template can address.
const (
	resourceBoard       = "board"
	resourceLayout      = "layout"
	resourceSection     = "section"
	resourceGrants      = "grants"
	resourceAudit       = "audit"
	resourceIntegration = "integration"
	resourceHealth      = "health"
	resourceOther       = "other"
)

// Metrics records latency per route template and counts board API requests by resource and outcome.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()

		metrics.APILatency.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		metrics.BoardAPIRequests.WithLabelValues(routeResource(route), requestOutcome(status)).Inc()
	}
}

func routeResource(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/board-names/"):
		return resourceBoard
	case route == "/api/boards" || strings.HasPrefix(route, "/api/boards/"):
		rest := strings.TrimPrefix(strings.TrimPrefix(route, "/api/boards"), "/:id")
		switch {
		case strings.HasPrefix(rest, "/layout"):
			return resourceLayout
		case strings.HasPrefix(rest, "/sections/"):
			return resourceSection
		case rest == "/grants":
			return resourceGrants
		case rest == "/audit":
			return resourceAudit
		default:
			// create, get, delete, settings, visibility and name
			return resourceBoard
		}
	case route == "/api/integrations" || strings.HasPrefix(route, "/api/integrations/"):
		return resourceIntegration
	case route == "/health" || strings.HasPrefix(route, "/health/"):
		return resourceHealth
	default:
		return resourceOther
	}
}

// requestOutcome buckets a status code. 404 is kept apart because it is also the answer
// for boards the caller may not see.
func requestOutcome(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "error"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "denied"
	case status >= http.StatusBadRequest:
		return "rejected"
	default:
		return "ok"
	}
}
