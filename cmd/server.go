package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/glisignoli/ai-yt-dlp-web/config"
	"github.com/glisignoli/ai-yt-dlp-web/handlers"
	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/middleware"
	"github.com/glisignoli/ai-yt-dlp-web/services"
	"github.com/glisignoli/ai-yt-dlp-web/websocket"
)

// StartWebServer wires the services together and runs the HTTP server
func StartWebServer(cfg *config.Config) error {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.Component("server")

	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	// Services
	hub := websocket.NewHub()
	go hub.Run()

	store := services.NewJSONStore(cfg.QueueFile)
	fetcher := services.NewYTDLPFetcher(cfg.YTDLPPath, cfg.ShowProgressBar)
	manager := services.NewManager(store, fetcher, hub, services.Options{
		OutputTemplate:   cfg.OutputTemplate(),
		WatchURLTemplate: cfg.WatchURLTemplate,
	})
	library := services.NewLibraryService()

	// Handlers
	queueHandler := handlers.NewQueueHandler(manager, hub)
	fileHandler := handlers.NewFileHandler(manager, library, cfg.DownloadDir)
	healthHandler := handlers.NewHealthHandler(cfg.DownloadDir)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Logging())

	setupRoutes(r, queueHandler, fileHandler, healthHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info().Str("addr", addr).Str("downloads", cfg.DownloadDir).Msg("Download queue server starting")
	return r.Run(addr)
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, queueHandler *handlers.QueueHandler, fileHandler *handlers.FileHandler, healthHandler *handlers.HealthHandler) {
	r.GET("/health", healthHandler.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Queue management
		queueGroup := apiGroup.Group("/queue")
		{
			queueGroup.POST("", queueHandler.AddToQueue)
			queueGroup.GET("", queueHandler.ListQueue)
			queueGroup.GET("/:jobId", queueHandler.GetJob)
			queueGroup.DELETE("/:jobId", queueHandler.RemoveFromQueue)
			queueGroup.POST("/completed/clear", queueHandler.ClearCompleted)
		}

		// Real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/queue/:jobId", queueHandler.HandleWebSocketConnection)
			wsGroup.GET("/queue", queueHandler.HandleWebSocketAllConnection)
		}

		// Artifacts
		apiGroup.GET("/files/:jobId", fileHandler.DownloadArtifact)
		apiGroup.GET("/library", fileHandler.ListLibrary)
	}
}
