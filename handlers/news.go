package handlers

import (
	"net/http"

	"emergency-alert-service/middleware"
	"emergency-alert-service/models"

	"github.com/gin-gonic/gin"
)

// PublishNewsRequest is the payload for a news item.
type PublishNewsRequest struct {
	Title           string `json:"title" binding:"required"`
	Content         string `json:"content" binding:"required"`
	Category        string `json:"category"`
	RelatedReportID string `json:"related_report_id"`
}

// PublishNews handles POST /api/v1/news
func (h *Handlers) PublishNews(c *gin.Context) {
	var req PublishNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	account := middleware.AccountFromContext(c)
	item, err := h.svc.PublishNews(c.Request.Context(), account, &models.News{
		Title:           req.Title,
		Content:         req.Content,
		Category:        req.Category,
		RelatedReportID: req.RelatedReportID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListNews handles GET /api/v1/news
func (h *Handlers) ListNews(c *gin.Context) {
	items, err := h.svc.ListNews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": items, "count": len(items)})
}
