package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// DownloadHandler serves the download journal
type DownloadHandler struct {
	repo   domain.DownloadRepository
	logger *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(repo domain.DownloadRepository, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		repo:   repo,
		logger: logger,
	}
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	filters := make(map[string]interface{})

	if status := c.Query("status"); status != "" {
		if !domain.ValidateStatus(domain.DownloadStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filters["status"] = status
	}
	if runID := c.Query("run_id"); runID != "" {
		filters["run_id"] = runID
	}
	if feed := c.Query("feed"); feed != "" {
		filters["feed_title"] = feed
	}

	records, err := h.repo.FindAll(filters)
	if err != nil {
		h.logger.Error("Failed to list downloads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list downloads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloads": records,
		"count":     len(records),
	})
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	record, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
			return
		}
		h.logger.Error("Failed to get download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get download"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRun handles GET /api/v1/runs/:id
func (h *DownloadHandler) GetRun(c *gin.Context) {
	runID := c.Param("id")

	records, err := h.repo.FindByRun(runID)
	if err != nil {
		h.logger.Error("Failed to get run", zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	summary := gin.H{
		string(domain.StatusDownloaded): 0,
		string(domain.StatusSkipped):    0,
		string(domain.StatusFailed):     0,
	}
	for _, r := range records {
		summary[string(r.Status)] = summary[string(r.Status)].(int) + 1
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":    runID,
		"feed":      records[0].FeedTitle,
		"summary":   summary,
		"downloads": records,
	})
}
