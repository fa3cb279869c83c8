package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// FragmentHandlers serves the HTML fragments embedded in legacy interfaces.
type FragmentHandlers struct {
	bannerService *services.BannerService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewFragmentHandlers creates fragment handlers with injected dependencies
func NewFragmentHandlers(bannerService *services.BannerService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FragmentHandlers {
	return &FragmentHandlers{
		bannerService: bannerService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// GetBanner handles GET /api/v1/fragments/banner - renders the sunset banner
// plus popup for the requesting session. Every page load of the legacy
// interface fetches this fragment; the popup's open/closed state rides
// along in the markup.
func (h *FragmentHandlers) GetBanner(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_banner_fragment", siteCtx.SiteID)
	defer marker.Complete()

	sessionID := c.GetHeader(config.FingerprintHeaderKey)
	if sessionID == "" {
		h.logger.Notice().Warn("Banner request missing session header", "siteId", siteCtx.SiteID)
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session header required"})
		return
	}

	html, err := h.bannerService.GetBannerFragment(sessionID, siteCtx)
	if err != nil {
		if err.Error() == "unknown session" {
			marker.SetSuccess(false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown session"})
			return
		}
		h.logger.Notice().Error("Banner fragment failed", "siteId", siteCtx.SiteID, "error", err)
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render banner"})
		return
	}

	marker.SetSuccess(true)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}
