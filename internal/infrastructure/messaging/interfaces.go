// Package messaging defines interfaces for real-time communication.
package messaging

// Broadcaster defines the interface for managing SSE client connections and broadcasting messages.
type Broadcaster interface {
	AddClientWithSession(siteID, sessionID string) chan string
	RemoveClientWithSession(ch chan string, siteID, sessionID string)
	GetSessionConnectionCount(siteID, sessionID string) int
	BroadcastNoticeState(siteID, sessionID, noticeID string, isOpen bool)
	BroadcastNoticeActivated(siteID, noticeID string)
}
