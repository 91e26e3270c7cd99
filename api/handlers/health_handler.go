package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	repo domain.DownloadRepository
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(repo domain.DownloadRepository) *HealthHandler {
	return &HealthHandler{
		repo: repo,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Journal struct {
		Reachable bool  `json:"reachable"`
		Records   int64 `json:"records"`
	} `json:"journal"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}

	count, err := h.repo.Count()
	if err != nil {
		response.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Journal.Reachable = true
	response.Journal.Records = count

	c.JSON(http.StatusOK, response)
}
