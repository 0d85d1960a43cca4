package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/boardsync/internal/monitoring"
	"github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/response"
)

var errNotReady = errors.New("NOT_READY", "Service not ready", http.StatusServiceUnavailable)

// Health returns a simple status payload useful for liveness checks.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready runs the readiness probes and reports 503 when any of them is down.
func Ready(health *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := health.Evaluate(requestContext(c))
		if !report.Ready {
			var failed []string
			for _, check := range report.Checks {
				if check.Status == monitoring.StatusDown {
					failed = append(failed, check.Component+": "+check.Details)
				}
			}
			response.Error(c, errNotReady.WithInternal(fmt.Errorf("%s", strings.Join(failed, "; "))))
			return
		}
		response.Success(c, http.StatusOK, report)
	}
}
