// Package manager provides centralized cache operations with proper site isolation
package manager

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
)

// Manager provides centralized cache operations with proper site isolation by
// delegating to specialized stores.
type Manager struct {
	Mu           sync.RWMutex
	LastAccessed map[string]time.Time

	sessionsStore *stores.SessionsStore
	noticesStore  *stores.NoticesStore
	logger        *logging.ChanneledLogger
}

// NewManager creates a cache manager wired to its stores.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"sessions", "notices"})
	}

	return &Manager{
		LastAccessed:  make(map[string]time.Time),
		sessionsStore: stores.NewSessionsStore(logger),
		noticesStore:  stores.NewNoticesStore(logger),
		logger:        logger,
	}
}

// InitializeSite prepares all stores for a site.
func (m *Manager) InitializeSite(siteID string) {
	m.sessionsStore.InitializeSite(siteID)
	m.noticesStore.InitializeSite(siteID)
	m.touch(siteID)
}

func (m *Manager) touch(siteID string) {
	m.Mu.Lock()
	m.LastAccessed[siteID] = time.Now().UTC()
	m.Mu.Unlock()
}

// Session operations

func (m *Manager) GetSession(siteID, sessionID string) (*types.SessionData, bool) {
	m.touch(siteID)
	return m.sessionsStore.GetSession(siteID, sessionID)
}

func (m *Manager) SetSession(siteID string, sessionData *types.SessionData) {
	m.touch(siteID)
	m.sessionsStore.SetSession(siteID, sessionData)
}

func (m *Manager) RemoveSession(siteID, sessionID string) {
	m.sessionsStore.RemoveSession(siteID, sessionID)
}

func (m *Manager) GetSessionsByFingerprint(siteID, fingerprintID string) []string {
	return m.sessionsStore.GetSessionsByFingerprint(siteID, fingerprintID)
}

func (m *Manager) SessionAtCapacity(siteID string) bool {
	return m.sessionsStore.AtCapacity(siteID)
}

func (m *Manager) SweepExpiredSessions(siteID string) int {
	return m.sessionsStore.SweepExpiredSessions(siteID)
}

// GetSiteUserStateCache exposes the raw per-site cache for bulk readers
// like the activity broadcaster. Callers must take cache.Mu themselves.
func (m *Manager) GetSiteUserStateCache(siteID string) (*types.SiteUserStateCache, bool) {
	return m.sessionsStore.GetSiteCache(siteID)
}

// Fingerprint state operations

func (m *Manager) GetFingerprintState(siteID, fingerprintID string) (*types.FingerprintState, bool) {
	m.touch(siteID)
	return m.sessionsStore.GetFingerprintState(siteID, fingerprintID)
}

func (m *Manager) SetFingerprintState(siteID string, state *types.FingerprintState) {
	m.touch(siteID)
	m.sessionsStore.SetFingerprintState(siteID, state)
}

func (m *Manager) MarkNoticeSeen(siteID, fingerprintID, noticeID, marker string) {
	m.touch(siteID)
	m.sessionsStore.MarkNoticeSeen(siteID, fingerprintID, noticeID, marker)
}

// Notice catalog operations

func (m *Manager) GetNotice(siteID, noticeID string) (*notice.Notice, bool) {
	m.touch(siteID)
	return m.noticesStore.GetNotice(siteID, noticeID)
}

func (m *Manager) SetNotice(siteID string, n *notice.Notice) {
	m.touch(siteID)
	m.noticesStore.SetNotice(siteID, n)
}

func (m *Manager) GetActiveNotice(siteID string) (*notice.Notice, bool) {
	m.touch(siteID)
	return m.noticesStore.GetActiveNotice(siteID)
}

func (m *Manager) SetActiveNotice(siteID string, n *notice.Notice) {
	m.touch(siteID)
	m.noticesStore.SetActiveNotice(siteID, n)
}

func (m *Manager) InvalidateNotices(siteID string) {
	m.noticesStore.InvalidateSite(siteID)
}
