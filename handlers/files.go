package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/services"
	"github.com/glisignoli/ai-yt-dlp-web/types"
)

// FileHandler serves finished artifacts and the library listing
type FileHandler struct {
	manager     services.Manager
	library     services.LibraryService
	downloadDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(m services.Manager, library services.LibraryService, downloadDir string) *FileHandler {
	return &FileHandler{
		manager:     m,
		library:     library,
		downloadDir: downloadDir,
	}
}

// DownloadArtifact serves a completed job's file to the client. The three
// not-ready cases answer with distinct statuses and reasons so callers can
// tell them apart.
func (h *FileHandler) DownloadArtifact(c *gin.Context) {
	jobID := c.Param("jobId")

	job, exists := h.manager.Job(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "job not found",
			"reason": "not_found",
		})
		return
	}

	if job.Status != types.StatusCompleted || job.Filename == "" {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "file not available for download",
			"reason": "not_completed",
		})
		return
	}

	if _, err := os.Stat(job.Filename); err != nil {
		c.JSON(http.StatusGone, gin.H{
			"error":  "file not found on disk",
			"reason": "missing_on_disk",
		})
		return
	}

	c.Header("Content-Type", h.library.GetContentType(job.Filename))
	c.FileAttachment(job.Filename, filepath.Base(job.Filename))
}

// ListLibrary returns every artifact in the download directory
func (h *FileHandler) ListLibrary(c *gin.Context) {
	files, err := h.library.ScanFiles(h.downloadDir)
	if err != nil {
		logger := logging.Component("http")
		logger.Error().Err(err).Msg("Failed to scan library")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to scan files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}
