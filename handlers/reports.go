package handlers

import (
	"net/http"

	"emergency-alert-service/middleware"
	"emergency-alert-service/models"
	"emergency-alert-service/service"

	"github.com/gin-gonic/gin"
)

// SubmitReportRequest is the payload for a new incident report.
type SubmitReportRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Content string `json:"content" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
}

// SubmitReport handles POST /api/v1/reports. Works with or without
// authentication; anonymous submissions carry no reporter.
func (h *Handlers) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind, content, city and state are required"})
		return
	}

	reporterID := ""
	if account := middleware.AccountFromContext(c); account != nil {
		reporterID = account.ID
	}

	report, err := h.svc.SubmitReport(c.Request.Context(), service.SubmitReportInput{
		ReporterID: reporterID,
		Kind:       models.ReportKind(req.Kind),
		Content:    req.Content,
		City:       req.City,
		State:      req.State,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetReport handles GET /api/v1/reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetMyReports handles GET /api/v1/my/reports
func (h *Handlers) GetMyReports(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	reports, err := h.svc.GetMyReports(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// UpdateStatusRequest is the payload for a report status transition.
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	HelpSituation string `json:"help_situation"`
}

// UpdateReportStatus handles PATCH /api/v1/reports/:id/status
func (h *Handlers) UpdateReportStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	account := middleware.AccountFromContext(c)
	report, err := h.svc.UpdateReportStatus(c.Request.Context(), account, c.Param("id"), service.StatusUpdateInput{
		Status:        models.ReportStatus(req.Status),
		HelpSituation: req.HelpSituation,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReviewRequest is the payload for a reporter's outcome review.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// AddReview handles POST /api/v1/reports/:id/review
func (h *Handlers) AddReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}

	account := middleware.AccountFromContext(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	report, err := h.svc.AddReview(c.Request.Context(), account.ID, c.Param("id"), models.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport handles DELETE /api/v1/reports/:id
func (h *Handlers) DeleteReport(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	if err := h.svc.DeleteReport(c.Request.Context(), account, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
