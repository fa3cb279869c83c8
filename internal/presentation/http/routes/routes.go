// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/application/container"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	visitHandlers := handlers.NewVisitHandlers(container.SessionService, container.Broadcaster, container.Logger, container.PerfTracker)
	fragmentHandlers := handlers.NewFragmentHandlers(container.BannerService, container.Logger, container.PerfTracker)
	stateHandlers := handlers.NewStateHandlers(container.StateService, container.Logger, container.PerfTracker)
	noticeHandlers := handlers.NewNoticeHandlers(container.NoticeService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	activityHandlers := handlers.NewActivityHandlers(container.ActivityBroadcaster, container.AuthService, container.Logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"activeSites":     container.SiteManager.GetActiveSiteIDs(),
			"connectionPools": site.GetPoolStats(),
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
		})
	})

	// API routes with site middleware
	api := r.Group("/api/v1")
	api.Use(middleware.SiteMiddleware(container.SiteManager, container.PerfTracker))
	{
		// Session and streaming endpoints
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/visit", visitHandlers.PostVisit)
			authGroup.GET("/sse", visitHandlers.GetSSE)
			authGroup.POST("/login", authHandlers.PostLogin)
		}

		// Banner fragment and popup state
		api.GET("/fragments/banner", fragmentHandlers.GetBanner)
		api.POST("/state", stateHandlers.PostState)

		// Websocket dials cannot carry an Authorization header; the
		// handler validates the operator token from a query param.
		api.GET("/ws/activity", activityHandlers.GetActivityFeed)

		// Operator endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.OperatorAuthMiddleware())
		{
			admin.GET("/notices", noticeHandlers.GetNotices)
			admin.GET("/notices/:id", noticeHandlers.GetNotice)
			admin.POST("/notices", noticeHandlers.PostNotice)
			admin.PUT("/notices/:id", noticeHandlers.PutNotice)
			admin.POST("/notices/:id/activate", noticeHandlers.PostActivate)
			admin.DELETE("/notices/:id", noticeHandlers.DeleteNotice)

			admin.POST("/operators", authHandlers.PostRegister)
		}
	}

	return r
}
