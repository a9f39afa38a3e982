package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceStatus reports which optional collaborators are configured
type ServiceStatus struct {
	Providers map[string]bool `json:"providers"`
	Priority  []string        `json:"priority"`
	Search    bool            `json:"search"`
	Database  bool            `json:"database"`
	AuthMode  string          `json:"auth_mode"`
}

type HealthHandler struct {
	status ServiceStatus
}

func NewHealthHandler(status ServiceStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

// HealthCheck returns the health status of the API. Never exposes credentials.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"services": h.status,
	})
}
