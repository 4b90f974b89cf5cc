package handlers

import (
	"net/http"
	"strconv"

	"emergency-alert-service/middleware"
	"emergency-alert-service/service"

	"github.com/gin-gonic/gin"
)

// ListAlerts handles GET /api/v1/alerts. Supports pagination, sorting, and
// city/state narrowing within the caller's jurisdiction.
func (h *Handlers) ListAlerts(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := h.svc.ListAlerts(c.Request.Context(), account, service.ListAlertsInput{
		City:     c.Query("city"),
		State:    c.Query("state"),
		Page:     page,
		PageSize: pageSize,
		SortBy:   c.Query("sort_by"),
		SortDir:  c.Query("sort_dir"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAlert handles GET /api/v1/alerts/:id
func (h *Handlers) GetAlert(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	alert, err := h.svc.GetAlert(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// AcknowledgeAlert handles POST /api/v1/alerts/:id/acknowledge
func (h *Handlers) AcknowledgeAlert(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	alert, err := h.svc.AcknowledgeAlert(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// EscalateRequest is the payload for the single-target escalation routes.
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// EscalateToPeerCities handles POST /api/v1/alerts/:id/escalate/peer-cities
func (h *Handlers) EscalateToPeerCities(c *gin.Context) {
	var req EscalateRequest
	_ = c.ShouldBindJSON(&req)

	account := middleware.AccountFromContext(c)
	alert, err := h.svc.EscalateToPeerCities(c.Request.Context(), account, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// EscalateToState handles POST /api/v1/alerts/:id/escalate/state
func (h *Handlers) EscalateToState(c *gin.Context) {
	var req EscalateRequest
	_ = c.ShouldBindJSON(&req)

	account := middleware.AccountFromContext(c)
	alert, err := h.svc.EscalateToState(c.Request.Context(), account, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// EscalateStatesRequest is the payload for the multi-state escalation route.
type EscalateStatesRequest struct {
	States []string `json:"states" binding:"required"`
	Reason string   `json:"reason"`
}

// EscalateToStates handles POST /api/v1/alerts/:id/escalate/states
func (h *Handlers) EscalateToStates(c *gin.Context) {
	var req EscalateStatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "states list is required"})
		return
	}

	account := middleware.AccountFromContext(c)
	alert, err := h.svc.EscalateToStates(c.Request.Context(), account, c.Param("id"), req.States, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// EscalateToCentral handles POST /api/v1/alerts/:id/escalate/central
func (h *Handlers) EscalateToCentral(c *gin.Context) {
	var req EscalateRequest
	_ = c.ShouldBindJSON(&req)

	account := middleware.AccountFromContext(c)
	alert, err := h.svc.EscalateToCentral(c.Request.Context(), account, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// BroadcastRequest is the payload for an admin broadcast.
type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast handles POST /api/v1/broadcast
func (h *Handlers) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	account := middleware.AccountFromContext(c)
	result, err := h.svc.Broadcast(c.Request.Context(), account, service.BroadcastInput{
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
