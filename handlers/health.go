package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	downloadDir string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(downloadDir string) *HealthHandler {
	return &HealthHandler{downloadDir: downloadDir}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "download-queue",
		"timestamp": time.Now().Unix(),
	})
}

// APIStatus returns the status of the API
func (h *HealthHandler) APIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":           "Download queue API is running",
		"download_location": h.downloadDir,
	})
}
