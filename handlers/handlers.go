// Package handlers maps HTTP requests onto the service engines and maps
// classified service errors back to HTTP statuses.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/models"
	"emergency-alert-service/regions"
	"emergency-alert-service/service"
	ws "emergency-alert-service/websocket"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	svc       *service.Service
	hub       *ws.Hub
	resolver  *jurisdiction.Resolver
	directory *regions.Directory
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service, hub *ws.Hub, resolver *jurisdiction.Resolver, directory *regions.Directory) *Handlers {
	return &Handlers{
		svc:       svc,
		hub:       hub,
		resolver:  resolver,
		directory: directory,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *gin.Context) {
	clients, events := h.hub.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "emergency-alert-service",
		"connected_clients": clients,
		"published_events":  events,
		"time":              time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps a classified service error to its HTTP status.
func respondError(c *gin.Context, err error) {
	var svcErr *models.Error
	if !errors.As(err, &svcErr) {
		log.WithError(err).Error("Unclassified handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case models.ErrValidation:
		status = http.StatusBadRequest
	case models.ErrNotFound:
		status = http.StatusNotFound
	case models.ErrAuthorization:
		status = http.StatusForbidden
	case models.ErrConflict:
		status = http.StatusConflict
	case models.ErrDependency:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": svcErr.Message})
}
