// Package messaging provides the concrete implementation of the SSE broadcaster.
package messaging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster manages site-scoped, session-specific SSE connections.
// It keeps a browser's open tabs agreed on popup visibility: dismissing
// in one tab closes the popup in every other tab of the same session.
type SSEBroadcaster struct {
	siteSessions map[string]map[string][]chan string // siteId -> sessionId -> []channels
	mu           sync.Mutex
	logger       *logging.ChanneledLogger
}

var (
	globalBroadcaster *SSEBroadcaster
	once              sync.Once
)

// NewSSEBroadcaster creates the singleton SSEBroadcaster instance.
func NewSSEBroadcaster(logger *logging.ChanneledLogger) *SSEBroadcaster {
	once.Do(func() {
		globalBroadcaster = &SSEBroadcaster{
			siteSessions: make(map[string]map[string][]chan string),
			logger:       logger,
		}
	})
	return globalBroadcaster
}

// AddClientWithSession registers a new SSE client with site and session isolation.
func (b *SSEBroadcaster) AddClientWithSession(siteID, sessionID string) chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.siteSessions[siteID] == nil {
		b.siteSessions[siteID] = make(map[string][]chan string)
	}

	if b.siteSessions[siteID][sessionID] == nil {
		b.siteSessions[siteID][sessionID] = make([]chan string, 0)
	}
	b.siteSessions[siteID][sessionID] = append(b.siteSessions[siteID][sessionID], ch)

	b.logger.SSE().Debug("SSE client registered", "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))
	return ch
}

// RemoveClientWithSession removes an SSE client with site and session context.
func (b *SSEBroadcaster) RemoveClientWithSession(ch chan string, siteID, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if siteSessions, exists := b.siteSessions[siteID]; exists {
		if sessionClients, exists := siteSessions[sessionID]; exists {
			newClients := make([]chan string, 0, len(sessionClients)-1)
			for _, client := range sessionClients {
				if client != ch {
					newClients = append(newClients, client)
				}
			}
			siteSessions[sessionID] = newClients

			if len(siteSessions[sessionID]) == 0 {
				delete(siteSessions, sessionID)
			}
		}

		if len(siteSessions) == 0 {
			delete(b.siteSessions, siteID)
		}
	}
	b.logger.SSE().Debug("SSE client unregistered", "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))
}

// GetSessionConnectionCount returns the connection count for a specific site session.
func (b *SSEBroadcaster) GetSessionConnectionCount(siteID, sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if siteSessions, exists := b.siteSessions[siteID]; exists {
		if sessionClients, exists := siteSessions[sessionID]; exists {
			return len(sessionClients)
		}
	}
	return 0
}

// BroadcastNoticeState sends a popup visibility update to every tab of one session.
func (b *SSEBroadcaster) BroadcastNoticeState(siteID, sessionID, noticeID string, isOpen bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in BroadcastNoticeState", "error", r, "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))
		}
	}()

	message := fmt.Sprintf("event: notice_state\ndata: {\"noticeId\":\"%s\",\"isOpen\":%t}\n\n", noticeID, isOpen)

	b.logger.SSE().Debug("Broadcasting to session", "message", strings.ReplaceAll(message, "\n", "\\n"), "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))

	b.mu.Lock()
	defer b.mu.Unlock()

	if siteSessions, exists := b.siteSessions[siteID]; exists {
		if sessionClients, exists := siteSessions[sessionID]; exists {
			for _, ch := range sessionClients {
				select {
				case ch <- message:
				default:
					b.logger.SSE().Warn("SSE channel full, message dropped", "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))
				}
			}
		}
	}
}

// BroadcastNoticeActivated tells every connected session on a site to re-fetch
// its banner fragment. Fired when an operator activates a different notice.
func (b *SSEBroadcaster) BroadcastNoticeActivated(siteID, noticeID string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in BroadcastNoticeActivated", "error", r, "siteId", siteID)
		}
	}()

	message := fmt.Sprintf("event: notice_activated\ndata: {\"noticeId\":\"%s\"}\n\n", noticeID)

	b.mu.Lock()
	defer b.mu.Unlock()

	if siteSessions, exists := b.siteSessions[siteID]; exists {
		for sessionID, sessionClients := range siteSessions {
			for _, ch := range sessionClients {
				select {
				case ch <- message:
				default:
					b.logger.SSE().Warn("SSE channel full, message dropped", "siteId", siteID, "sessionId", logging.SanitizeSessionID(sessionID))
				}
			}
		}
	}
}
