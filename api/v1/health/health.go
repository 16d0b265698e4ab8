package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "statuspage-cron/services/v1"
)

// GetHealth reports liveness together with how many sources currently
// have a snapshot and how many are failing.
func GetHealth(store *v1.MetricsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    http.StatusOK,
			"message":   "ok",
			"snapshots": len(store.Snapshots()),
			"errors":    len(store.Errors()),
		})
	}
}
