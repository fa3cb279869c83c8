// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SessionsStore implements user state caching operations with site isolation
type SessionsStore struct {
	siteCaches map[string]*types.SiteUserStateCache
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store")
	}
	return &SessionsStore{
		siteCaches: make(map[string]*types.SiteUserStateCache),
		logger:     logger,
	}
}

// InitializeSite creates cache structures for a site
func (ss *SessionsStore) InitializeSite(siteID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.siteCaches[siteID] == nil {
		ss.siteCaches[siteID] = &types.SiteUserStateCache{
			FingerprintStates:     make(map[string]*types.FingerprintState),
			SessionStates:         make(map[string]*types.SessionData),
			FingerprintToSessions: make(map[string][]string),
			LastLoaded:            time.Now().UTC(),
		}
		if ss.logger != nil {
			ss.logger.Cache().Info("Site user state cache initialized", "siteId", siteID)
		}
	}
}

// GetSiteCache safely retrieves a site's user state cache
func (ss *SessionsStore) GetSiteCache(siteID string) (*types.SiteUserStateCache, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	cache, exists := ss.siteCaches[siteID]
	return cache, exists
}

// GetSession retrieves session data, honoring expiry.
func (ss *SessionsStore) GetSession(siteID, sessionID string) (*types.SessionData, bool) {
	start := time.Now()
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	session, found := cache.SessionStates[sessionID]
	if !found {
		if ss.logger != nil {
			ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "siteId", siteID, "hit", false, "duration", time.Since(start))
		}
		return nil, false
	}
	// Expired sessions are misses but stay in the map; the sweep worker
	// removes them under the write lock.
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, false
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "siteId", siteID, "hit", true, "duration", time.Since(start))
	}
	return session, true
}

// SetSession stores session data and maintains the fingerprint index.
func (ss *SessionsStore) SetSession(siteID string, sessionData *types.SessionData) {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		ss.InitializeSite(siteID)
		cache, _ = ss.GetSiteCache(siteID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	if prior, found := cache.SessionStates[sessionData.SessionID]; found && prior.FingerprintID != sessionData.FingerprintID {
		removeSessionFromIndex(cache, prior.FingerprintID, sessionData.SessionID)
	}

	cache.SessionStates[sessionData.SessionID] = sessionData
	addSessionToIndex(cache, sessionData.FingerprintID, sessionData.SessionID)
	cache.LastLoaded = time.Now().UTC()
}

// RemoveSession drops a session and its index entry.
func (ss *SessionsStore) RemoveSession(siteID, sessionID string) {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	if session, found := cache.SessionStates[sessionID]; found {
		removeSessionFromIndex(cache, session.FingerprintID, sessionID)
		delete(cache.SessionStates, sessionID)
	}
}

// GetSessionsByFingerprint returns all live session IDs for a fingerprint.
func (ss *SessionsStore) GetSessionsByFingerprint(siteID, fingerprintID string) []string {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return nil
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	sessions := cache.FingerprintToSessions[fingerprintID]
	out := make([]string, len(sessions))
	copy(out, sessions)
	return out
}

// GetFingerprintState retrieves a fingerprint's cached state.
func (ss *SessionsStore) GetFingerprintState(siteID, fingerprintID string) (*types.FingerprintState, bool) {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	state, found := cache.FingerprintStates[fingerprintID]
	return state, found
}

// SetFingerprintState stores a fingerprint's state.
func (ss *SessionsStore) SetFingerprintState(siteID string, state *types.FingerprintState) {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		ss.InitializeSite(siteID)
		cache, _ = ss.GetSiteCache(siteID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.FingerprintStates[state.FingerprintID] = state
	cache.LastLoaded = time.Now().UTC()
}

// MarkNoticeSeen records a seen marker on the cached fingerprint state.
// Creates the state on demand; the persistent write happens elsewhere.
func (ss *SessionsStore) MarkNoticeSeen(siteID, fingerprintID, noticeID, marker string) {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		ss.InitializeSite(siteID)
		cache, _ = ss.GetSiteCache(siteID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	state, found := cache.FingerprintStates[fingerprintID]
	if !found {
		state = &types.FingerprintState{
			FingerprintID: fingerprintID,
			SeenNotices:   make(map[string]string),
		}
		cache.FingerprintStates[fingerprintID] = state
	}
	if state.SeenNotices == nil {
		state.SeenNotices = make(map[string]string)
	}
	state.SeenNotices[noticeID] = marker
	state.LastActivity = time.Now().UTC()
}

// SweepExpiredSessions removes sessions past their expiry and returns how
// many were dropped.
func (ss *SessionsStore) SweepExpiredSessions(siteID string) int {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return 0
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	now := time.Now().UTC()
	removed := 0
	for sessionID, session := range cache.SessionStates {
		if now.After(session.ExpiresAt) {
			removeSessionFromIndex(cache, session.FingerprintID, sessionID)
			delete(cache.SessionStates, sessionID)
			removed++
		}
	}

	if removed > 0 && ss.logger != nil {
		ss.logger.Cache().Info("Expired sessions swept", "siteId", siteID, "removed", removed)
	}
	return removed
}

// SessionCount reports live sessions for capacity checks against
// config.MaxSessionsPerSite.
func (ss *SessionsStore) SessionCount(siteID string) int {
	cache, exists := ss.GetSiteCache(siteID)
	if !exists {
		return 0
	}
	cache.Mu.RLock()
	defer cache.Mu.RUnlock()
	return len(cache.SessionStates)
}

// AtCapacity reports whether a site can accept another session.
func (ss *SessionsStore) AtCapacity(siteID string) bool {
	return ss.SessionCount(siteID) >= config.MaxSessionsPerSite
}

func addSessionToIndex(cache *types.SiteUserStateCache, fingerprintID, sessionID string) {
	for _, existing := range cache.FingerprintToSessions[fingerprintID] {
		if existing == sessionID {
			return
		}
	}
	cache.FingerprintToSessions[fingerprintID] = append(cache.FingerprintToSessions[fingerprintID], sessionID)
}

func removeSessionFromIndex(cache *types.SiteUserStateCache, fingerprintID, sessionID string) {
	sessions := cache.FingerprintToSessions[fingerprintID]
	for i, existing := range sessions {
		if existing == sessionID {
			cache.FingerprintToSessions[fingerprintID] = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}
	if len(cache.FingerprintToSessions[fingerprintID]) == 0 {
		delete(cache.FingerprintToSessions, fingerprintID)
	}
}
