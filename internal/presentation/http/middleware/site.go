// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/gin-gonic/gin"
)

// SiteMiddleware resolves the site context for every request and stores it
// in the gin context for handlers to access.
func SiteMiddleware(siteManager *site.Manager, perfTracker *performance.Tracker) gin.HandlerFunc {
	logger := siteManager.GetLogger()

	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("middleware_site_resolution", "unknown")
		defer marker.Complete()

		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("method", c.Request.Method)

		siteCtx, err := siteManager.GetContext(c)
		if err != nil {
			logger.System().Warn("Site resolution failed", "path", c.Request.URL.Path, "error", err)
			marker.SetSuccess(false)
			marker.SetError(err)
			c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
			c.Abort()
			return
		}

		if !siteCtx.IsActive() {
			errMsg := fmt.Sprintf("site '%s' is not active", siteCtx.SiteID)
			logger.System().Warn(errMsg)
			marker.SetSuccess(false)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errMsg})
			c.Abort()
			return
		}

		logger.System().Debug("Site context resolved",
			"siteId", siteCtx.SiteID,
			"duration", time.Since(start),
			"database", siteCtx.GetDatabaseInfo(),
		)
		marker.SiteID = siteCtx.SiteID
		marker.SetSuccess(true)

		c.Set("site", siteCtx)

		c.Next()
	}
}

// GetSiteContext retrieves the site context from gin context.
func GetSiteContext(c *gin.Context) (*site.Context, bool) {
	siteCtx, exists := c.Get("site")
	if !exists {
		return nil, false
	}

	ctx, ok := siteCtx.(*site.Context)
	return ctx, ok
}
