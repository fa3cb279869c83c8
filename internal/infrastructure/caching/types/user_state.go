// Package types defines user state and session data structures.
package types

import (
	"sync"
	"time"
)

// SiteUserStateCache holds user state data for a single site
type SiteUserStateCache struct {
	// Persistent user state by fingerprint
	FingerprintStates     map[string]*FingerprintState // fingerprintId -> state
	SessionStates         map[string]*SessionData      // sessionId -> session data
	FingerprintToSessions map[string][]string

	// Cache metadata
	LastLoaded time.Time
	Mu         sync.RWMutex // Exported for access
}

// FingerprintState represents a client fingerprint's persistent state.
// SeenNotices mirrors the dismissals table: noticeId -> seen marker value.
type FingerprintState struct {
	FingerprintID string            `json:"fingerprintId"`
	SeenNotices   map[string]string `json:"seenNotices"`
	LastActivity  time.Time         `json:"lastActivity"`
}

// SessionData represents ephemeral session state and serves as the coordination hub.
// Sessions link frontend/backend interactions and own references to both fingerprint and visit.
type SessionData struct {
	SessionID     string    `json:"sessionId"`
	FingerprintID string    `json:"fingerprintId"`
	VisitID       string    `json:"visitId"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActivity  time.Time `json:"lastActivity"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
