package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	v1 "statuspage-cron/services/v1"
)

const headerFetchedAt = "X-Snapshot-Fetched-At"

// Handler serves the read side of the metrics store.
type Handler struct {
	store *v1.MetricsStore
}

func NewHandler(store *v1.MetricsStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetSnapshots(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.store.Snapshots())
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	label := c.Param("label")
	snapshot, ok := h.store.Snapshot(label)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "snapshot not found"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header(headerFetchedAt, snapshot.FetchedAt().UTC().Format(time.RFC3339))
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) GetErrors(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.store.Errors())
}

// GetResources returns the flattened resource id to status view.
func (h *Handler) GetResources(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.store.StatusOfAllResources())
}

// GetResource looks up one resource; ids contain slashes, so the route uses a catch-all.
func (h *Handler) GetResource(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "missing resource id"})
		return
	}
	resource, ok := h.store.Resource(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "resource not found"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resource)
}
