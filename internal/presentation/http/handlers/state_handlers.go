package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/domain/events"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// StateHandlers processes popup activations posted by the banner controls.
type StateHandlers struct {
	stateService *services.StateService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewStateHandlers creates state handlers with injected dependencies
func NewStateHandlers(stateService *services.StateService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateHandlers {
	return &StateHandlers{
		stateService: stateService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// stateRequest accepts both JSON and form posts; the banner controls use
// htmx form encoding.
type stateRequest struct {
	NoticeID string `json:"noticeId" form:"noticeId" binding:"required"`
	Verb     string `json:"verb" form:"verb" binding:"required"`
}

// PostState handles POST /api/v1/state - applies OPENED and DISMISSED
// activations and answers with the refreshed banner fragment.
func (h *StateHandlers) PostState(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_state_request", siteCtx.SiteID)
	defer marker.Complete()

	sessionID := c.GetHeader(config.FingerprintHeaderKey)
	if sessionID == "" {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session header required"})
		return
	}

	var req stateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Notice().Error("State request binding failed", "siteId", siteCtx.SiteID, "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	event := events.PopupEvent{NoticeID: req.NoticeID, Verb: req.Verb}

	html, err := h.stateService.HandlePopupEvent(sessionID, event, siteCtx)
	if err != nil {
		marker.SetSuccess(false)
		switch err.Error() {
		case "invalid popup event":
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown verb or missing notice"})
		case "unknown session":
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown session"})
		default:
			h.logger.Notice().Error("Popup event failed", "siteId", siteCtx.SiteID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		}
		return
	}

	marker.SetSuccess(true)
	marker.AddMetadata("verb", req.Verb)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}
