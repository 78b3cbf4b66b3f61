package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/services"
	"github.com/glisignoli/ai-yt-dlp-web/types"
	"github.com/glisignoli/ai-yt-dlp-web/websocket"
)

// QueueHandler exposes the queue manager's operations over HTTP
type QueueHandler struct {
	manager services.Manager
	hub     websocket.Hub
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(m services.Manager, hub websocket.Hub) *QueueHandler {
	return &QueueHandler{
		manager: m,
		hub:     hub,
	}
}

// AddToQueue enqueues a URL. Playlist URLs fan out into multiple jobs; the
// response always carries the full list of created jobs in entry order.
func (h *QueueHandler) AddToQueue(c *gin.Context) {
	var req types.AddToQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url is required",
		})
		return
	}

	jobs := h.manager.Add(req.URL)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Added to queue",
		"jobs":    jobs,
		"total":   len(jobs),
	})
}

// ListQueue returns the ordered queue and the processing flag
func (h *QueueHandler) ListQueue(c *gin.Context) {
	jobs := h.manager.Jobs()
	c.JSON(http.StatusOK, types.QueueResponse{
		Jobs:       jobs,
		Total:      len(jobs),
		Processing: h.manager.IsProcessing(),
	})
}

// GetJob returns a single job by id
func (h *QueueHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, exists := h.manager.Job(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": job,
	})
}

// RemoveFromQueue removes a job and deletes its artifact. Removing an
// unknown id is a no-op and still answers 200.
func (h *QueueHandler) RemoveFromQueue(c *gin.Context) {
	jobID := c.Param("jobId")
	h.manager.Remove(jobID)
	c.JSON(http.StatusOK, gin.H{
		"message": "removed from queue",
	})
}

// ClearCompleted drops all completed and failed jobs along with their
// artifacts
func (h *QueueHandler) ClearCompleted(c *gin.Context) {
	removed := h.manager.ClearCompleted()
	c.JSON(http.StatusOK, gin.H{
		"message": "cleared completed downloads",
		"removed": removed,
	})
}

// HandleWebSocketConnection subscribes a client to one job's progress
func (h *QueueHandler) HandleWebSocketConnection(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, exists := h.manager.Job(jobID); !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	h.upgrade(c, jobID)
}

// HandleWebSocketAllConnection subscribes a client to every job's progress
func (h *QueueHandler) HandleWebSocketAllConnection(c *gin.Context) {
	h.upgrade(c, websocket.AllJobs)
}

func (h *QueueHandler) upgrade(c *gin.Context, jobID string) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger := logging.Component("http")
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, jobID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
