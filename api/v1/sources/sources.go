package sources

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"statuspage-cron/client"
	v1 "statuspage-cron/services/v1"
)

type connectionRequest struct {
	URL    string `json:"url"`
	APIKey string `json:"apiKey"`
	Pages  string `json:"pages"`
}

// PostTestConnection checks a source definition without storing it.
func PostTestConnection(factory client.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req connectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, v1.CheckConnection(c.Request.Context(), factory, req.URL, req.APIKey, req.Pages))
	}
}
