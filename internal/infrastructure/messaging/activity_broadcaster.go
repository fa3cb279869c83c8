package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/gorilla/websocket"
)

// ActivityClient represents a single connected operator dashboard client.
type ActivityClient struct {
	Conn   *websocket.Conn
	SiteID string
	Send   chan []byte
}

// SessionActivity represents the state of one user session for visualization.
type SessionActivity struct {
	HasDismissed bool      `json:"hasDismissed"`
	LastActivity time.Time `json:"lastActivity"`
}

// ActivityPayload is the data structure sent to the dashboard on each tick.
type ActivityPayload struct {
	Sessions       []SessionActivity `json:"sessions"`
	DisplayMode    string            `json:"displayMode"` // "1:1" or "CAPPED"
	ActiveNoticeID string            `json:"activeNoticeId,omitempty"`
	TotalCount     int               `json:"totalCount"`
	DismissedCount int               `json:"dismissedCount"`
	ActiveCount    int               `json:"activeCount"`
	DormantCount   int               `json:"dormantCount"`
}

const maxDisplaySessions = 200

// ActivityBroadcaster pushes per-site session activity to connected
// operator dashboards over websockets.
type ActivityBroadcaster struct {
	siteClients  map[string]map[*ActivityClient]bool
	register     chan *ActivityClient
	unregister   chan *ActivityClient
	cacheManager *manager.Manager
	siteManager  *site.Manager
	logger       *logging.ChanneledLogger
	mu           sync.RWMutex
}

// NewActivityBroadcaster creates a new broadcaster instance.
func NewActivityBroadcaster(sm *site.Manager, cm *manager.Manager, logger *logging.ChanneledLogger) *ActivityBroadcaster {
	return &ActivityBroadcaster{
		siteClients:  make(map[string]map[*ActivityClient]bool),
		register:     make(chan *ActivityClient),
		unregister:   make(chan *ActivityClient),
		cacheManager: cm,
		siteManager:  sm,
		logger:       logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *ActivityBroadcaster) Run() {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.siteClients[client.SiteID]; !ok {
				b.siteClients[client.SiteID] = make(map[*ActivityClient]bool)
			}
			b.siteClients[client.SiteID][client] = true
			b.mu.Unlock()
			b.logger.SSE().Debug("Activity client registered", "siteId", client.SiteID)

		case client := <-b.unregister:
			b.mu.Lock()
			if clients, ok := b.siteClients[client.SiteID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(b.siteClients, client.SiteID)
					}
				}
			}
			b.mu.Unlock()
			b.logger.SSE().Debug("Activity client unregistered", "siteId", client.SiteID)

		case <-ticker.C:
			b.broadcastActivity()
		}
	}
}

// Register queues a client for registration.
func (b *ActivityBroadcaster) Register(client *ActivityClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *ActivityBroadcaster) Unregister(client *ActivityClient) {
	b.unregister <- client
}

// broadcastActivity gathers and sends session state for all sites with connected clients.
func (b *ActivityBroadcaster) broadcastActivity() {
	b.mu.RLock()
	siteIDs := make([]string, 0, len(b.siteClients))
	for siteID := range b.siteClients {
		siteIDs = append(siteIDs, siteID)
	}
	b.mu.RUnlock()

	for _, siteID := range siteIDs {
		payload := b.buildPayload(siteID)

		message, err := json.Marshal(payload)
		if err != nil {
			b.logger.SSE().Error("Error marshaling activity payload", "siteId", siteID, "error", err)
			continue
		}

		b.mu.RLock()
		if clients, ok := b.siteClients[siteID]; ok {
			for client := range clients {
				select {
				case client.Send <- message:
				default:
				}
			}
		}
		b.mu.RUnlock()
	}
}

// buildPayload computes the activity snapshot for one site from the caches.
func (b *ActivityBroadcaster) buildPayload(siteID string) ActivityPayload {
	activeNoticeID := ""
	if activeNotice, ok := b.cacheManager.GetActiveNotice(siteID); ok && activeNotice != nil {
		activeNoticeID = activeNotice.ID
	}

	userCache, ok := b.cacheManager.GetSiteUserStateCache(siteID)
	if !ok {
		return ActivityPayload{Sessions: []SessionActivity{}, DisplayMode: "1:1", ActiveNoticeID: activeNoticeID}
	}

	userCache.Mu.RLock()
	sessions := make([]SessionActivity, 0, len(userCache.SessionStates))
	for _, session := range userCache.SessionStates {
		hasDismissed := false
		if fpState, exists := userCache.FingerprintStates[session.FingerprintID]; exists {
			if activeNoticeID != "" {
				_, hasDismissed = fpState.SeenNotices[activeNoticeID]
			} else {
				hasDismissed = len(fpState.SeenNotices) > 0
			}
		}
		sessions = append(sessions, SessionActivity{
			HasDismissed: hasDismissed,
			LastActivity: session.LastActivity,
		})
	}
	userCache.Mu.RUnlock()

	payload := ActivityPayload{
		ActiveNoticeID: activeNoticeID,
		TotalCount:     len(sessions),
		DisplayMode:    "1:1",
	}

	now := time.Now()
	for _, s := range sessions {
		if s.HasDismissed {
			payload.DismissedCount++
		}
		if now.Sub(s.LastActivity).Minutes() <= 45 {
			payload.ActiveCount++
		} else {
			payload.DormantCount++
		}
	}

	if len(sessions) > maxDisplaySessions {
		payload.DisplayMode = "CAPPED"
		sessions = sessions[:maxDisplaySessions]
	}
	payload.Sessions = sessions

	return payload
}
