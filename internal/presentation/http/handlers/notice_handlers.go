package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// NoticeHandlers contains the operator-facing notice catalog handlers
type NoticeHandlers struct {
	noticeService *services.NoticeService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewNoticeHandlers creates notice handlers with injected dependencies
func NewNoticeHandlers(noticeService *services.NoticeService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *NoticeHandlers {
	return &NoticeHandlers{
		noticeService: noticeService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// GetNotices handles GET /api/v1/admin/notices - the full catalog
func (h *NoticeHandlers) GetNotices(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	notices, err := h.noticeService.GetAllNotices(siteCtx)
	if err != nil {
		h.logger.Notice().Error("Failed to list notices", "siteId", siteCtx.SiteID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

// GetNotice handles GET /api/v1/admin/notices/:id
func (h *NoticeHandlers) GetNotice(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	notice, err := h.noticeService.GetNotice(c.Param("id"), siteCtx)
	if err != nil {
		h.logger.Notice().Error("Failed to load notice", "siteId", siteCtx.SiteID, "noticeId", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notice"})
		return
	}
	if notice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
		return
	}

	c.JSON(http.StatusOK, notice)
}

// PostNotice handles POST /api/v1/admin/notices - creates a new notice
func (h *NoticeHandlers) PostNotice(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	var req services.NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	notice, err := h.noticeService.CreateNotice(&req, siteCtx)
	if err != nil {
		h.logger.Notice().Error("Failed to create notice", "siteId", siteCtx.SiteID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create notice"})
		return
	}

	c.JSON(http.StatusCreated, notice)
}

// PutNotice handles PUT /api/v1/admin/notices/:id - edits a notice in place
func (h *NoticeHandlers) PutNotice(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	var req services.NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	notice, err := h.noticeService.UpdateNotice(c.Param("id"), &req, siteCtx)
	if err != nil {
		h.logger.Notice().Error("Failed to update notice", "siteId", siteCtx.SiteID, "noticeId", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notice"})
		return
	}
	if notice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
		return
	}

	c.JSON(http.StatusOK, notice)
}

// PostActivate handles POST /api/v1/admin/notices/:id/activate - makes one
// notice live, deactivating any other
func (h *NoticeHandlers) PostActivate(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	notice, err := h.noticeService.ActivateNotice(c.Param("id"), siteCtx)
	if err != nil {
		h.logger.Notice().Error("Failed to activate notice", "siteId", siteCtx.SiteID, "noticeId", c.Param("id"), "operatorId", operatorID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate notice"})
		return
	}

	h.logger.Notice().Info("Notice activated by operator", "siteId", siteCtx.SiteID, "noticeId", notice.ID, "operatorId", operatorID)
	c.JSON(http.StatusOK, notice)
}

// DeleteNotice handles DELETE /api/v1/admin/notices/:id - removes a retired
// notice. The live notice is refused with 409; activate another one first.
func (h *NoticeHandlers) DeleteNotice(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	notice, err := h.noticeService.DeleteNotice(c.Param("id"), siteCtx)
	if err != nil {
		if errors.Is(err, services.ErrNoticeActive) {
			c.JSON(http.StatusConflict, gin.H{"error": services.ErrNoticeActive.Error()})
			return
		}
		h.logger.Notice().Error("Failed to delete notice", "siteId", siteCtx.SiteID, "noticeId", c.Param("id"), "operatorId", operatorID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notice"})
		return
	}
	if notice == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
		return
	}

	h.logger.Notice().Info("Notice deleted by operator", "siteId", siteCtx.SiteID, "noticeId", notice.ID, "operatorId", operatorID)
	c.JSON(http.StatusOK, gin.H{"deleted": notice.ID})
}
