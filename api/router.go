package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/podfetch-go/api/handlers"
	"github.com/yourusername/podfetch-go/api/middleware"
	"github.com/yourusername/podfetch-go/internal/domain"
)

// SetupRouter sets up the read-only journal and log API
func SetupRouter(repo domain.DownloadRepository, logsDir string, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	healthHandler := handlers.NewHealthHandler(repo)
	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		downloadHandler := handlers.NewDownloadHandler(repo, log)
		downloads := v1.Group("/downloads")
		{
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
		}
		v1.GET("/runs/:id", downloadHandler.GetRun)

		// Log endpoints only exist when event logging is configured
		if logsDir != "" {
			logHandler := handlers.NewLogHandler(logsDir)
			wsHandler := handlers.NewLogWebSocketHandler(logsDir, log)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/ws", wsHandler.HandleWebSocket)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
