// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// VisitHandlers contains all visit and session-related HTTP handlers
type VisitHandlers struct {
	sessionService *services.SessionService
	broadcaster    messaging.Broadcaster
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewVisitHandlers creates visit handlers with injected dependencies
func NewVisitHandlers(sessionService *services.SessionService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *VisitHandlers {
	return &VisitHandlers{
		sessionService: sessionService,
		broadcaster:    broadcaster,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// Global SSE connection tracking
var (
	activeSSEConnections int64
	maxSSEConnections    = int64(1000)
)

// PostVisit handles POST /api/v1/auth/visit - registers sessions and visits
func (h *VisitHandlers) PostVisit(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_visit_request", siteCtx.SiteID)
	defer marker.Complete()
	h.logger.Session().Debug("Received post visit request", "method", c.Request.Method, "path", c.Request.URL.Path, "siteId", siteCtx.SiteID)

	var req services.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Session().Error("Visit request JSON binding failed", "siteId", siteCtx.SiteID, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	result := h.sessionService.ProcessVisitRequest(&req, siteCtx)

	if !result.Success {
		h.logger.Session().Error("Visit processing failed",
			"siteId", siteCtx.SiteID,
			"error", result.Error,
			"duration", time.Since(start))
		marker.SetSuccess(false)
		h.logger.Perf().Info("Performance for PostVisit request", "duration", marker.Duration, "siteId", siteCtx.SiteID, "success", false)

		switch result.Error {
		case "session ID required":
			c.JSON(http.StatusBadRequest, gin.H{"error": result.Error})
		case "session capacity reached":
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": result.Error})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error})
		}
		return
	}

	h.logger.Session().Info("Visit processing completed",
		"siteId", siteCtx.SiteID,
		"fingerprintId", result.FingerprintID,
		"visitId", result.VisitID,
		"duration", time.Since(start))

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostVisit request", "duration", marker.Duration, "siteId", siteCtx.SiteID, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"fingerprint": result.FingerprintID,
		"visitId":     result.VisitID,
	})
}

// GetSSE handles GET /api/v1/auth/sse - establishes a Server-Sent Events
// connection that carries popup state updates to the session's other tabs.
func (h *VisitHandlers) GetSSE(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("get_sse_request", siteCtx.SiteID)
	defer marker.Complete()

	sessionID := c.Query("sessionId")
	if sessionID == "" {
		h.logger.SSE().Error("SSE connection request missing session ID", "siteId", siteCtx.SiteID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required for SSE connection"})
		return
	}

	currentConnections := atomic.LoadInt64(&activeSSEConnections)
	if currentConnections >= maxSSEConnections {
		h.logger.SSE().Warn("SSE connection limit reached",
			"siteId", siteCtx.SiteID,
			"sessionId", logging.SanitizeSessionID(sessionID),
			"currentConnections", currentConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "SSE connection limit reached. Please try again later.",
		})
		return
	}

	if h.broadcaster.GetSessionConnectionCount(siteCtx.SiteID, sessionID) >= config.MaxSessionConnections {
		h.logger.SSE().Warn("Per-session SSE connection limit reached",
			"siteId", siteCtx.SiteID, "sessionId", logging.SanitizeSessionID(sessionID))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connections for this session"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientCh := h.broadcaster.AddClientWithSession(siteCtx.SiteID, sessionID)
	defer h.broadcaster.RemoveClientWithSession(clientCh, siteCtx.SiteID, sessionID)

	atomic.AddInt64(&activeSSEConnections, 1)
	defer atomic.AddInt64(&activeSSEConnections, -1)

	initial := fmt.Sprintf("data: {\"type\":\"connected\",\"sessionId\":\"%s\",\"timestamp\":\"%s\"}\n\n", sessionID, time.Now().Format(time.RFC3339))
	if _, err := c.Writer.WriteString(initial); err != nil {
		h.logger.SSE().Error("SSE initial write failed", "siteId", siteCtx.SiteID, "error", err.Error())
		return
	}
	c.Writer.Flush()

	clientCtx := c.Request.Context()

	h.logger.SSE().Info("SSE connection established",
		"siteId", siteCtx.SiteID,
		"sessionId", logging.SanitizeSessionID(sessionID),
		"totalConnections", atomic.LoadInt64(&activeSSEConnections),
		"setupDuration", time.Since(start))
	marker.SetSuccess(true)

	heartbeat := time.NewTicker(time.Duration(config.SSEHeartbeatIntervalSeconds) * time.Second)
	defer heartbeat.Stop()

	connectionStart := time.Now()
	for {
		select {
		case <-clientCtx.Done():
			h.logger.SSE().Info("SSE client disconnected",
				"siteId", siteCtx.SiteID,
				"sessionId", logging.SanitizeSessionID(sessionID),
				"connectionDuration", time.Since(connectionStart))
			return

		case message, ok := <-clientCh:
			if !ok {
				return
			}
			if _, err := c.Writer.WriteString(message); err != nil {
				h.logger.SSE().Error("SSE write failed",
					"siteId", siteCtx.SiteID,
					"sessionId", logging.SanitizeSessionID(sessionID),
					"error", err.Error())
				return
			}
			c.Writer.Flush()

		case <-heartbeat.C:
			if _, err := c.Writer.WriteString(": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
