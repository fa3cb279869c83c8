package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ActivityHandlers streams session activity to the operator dashboard.
type ActivityHandlers struct {
	broadcaster *messaging.ActivityBroadcaster
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewActivityHandlers creates activity handlers with injected dependencies
func NewActivityHandlers(broadcaster *messaging.ActivityBroadcaster, authService *services.AuthService, logger *logging.ChanneledLogger) *ActivityHandlers {
	return &ActivityHandlers{
		broadcaster: broadcaster,
		authService: authService,
		logger:      logger,
	}
}

var activityUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer; the dashboard is same-origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GetActivityFeed handles GET /api/v1/ws/activity - upgrades to a websocket
// and pushes periodic session activity snapshots. Browsers cannot set an
// Authorization header on a websocket dial, so the dashboard passes its
// bearer token as a query param and the handler validates it itself.
func (h *ActivityHandlers) GetActivityFeed(c *gin.Context) {
	siteCtx, exists := middleware.GetSiteContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
		return
	}

	operatorID, err := h.authService.ValidateToken(c.Query("token"), siteCtx)
	if err != nil {
		h.logger.Auth().Warn("Activity feed rejected", "siteId", siteCtx.SiteID, "error", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "valid operator token required"})
		return
	}
	h.logger.Auth().Info("Activity feed authorized", "siteId", siteCtx.SiteID, "operatorId", operatorID)

	conn, err := activityUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.SSE().Error("Websocket upgrade failed", "siteId", siteCtx.SiteID, "error", err)
		return
	}

	client := &messaging.ActivityClient{
		Conn:   conn,
		SiteID: siteCtx.SiteID,
		Send:   make(chan []byte, 8),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump forwards broadcast payloads to the websocket until the send
// channel closes.
func (h *ActivityHandlers) writePump(client *messaging.ActivityClient) {
	defer client.Conn.Close()

	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(config.ServerWriteTimeout))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.SSE().Debug("Activity write failed", "siteId", client.SiteID, "error", err)
			return
		}
	}

	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection so pings are answered and disconnects are
// noticed, then unregisters the client.
func (h *ActivityHandlers) readPump(client *messaging.ActivityClient) {
	defer func() {
		h.broadcaster.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
