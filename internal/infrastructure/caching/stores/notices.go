package stores

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
)

// NoticesStore implements notice catalog caching with site isolation.
type NoticesStore struct {
	siteCaches map[string]*types.SiteNoticeCache
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
}

// NewNoticesStore creates a new notices cache store
func NewNoticesStore(logger *logging.ChanneledLogger) *NoticesStore {
	if logger != nil {
		logger.Cache().Info("Initializing notices cache store")
	}
	return &NoticesStore{
		siteCaches: make(map[string]*types.SiteNoticeCache),
		logger:     logger,
	}
}

// InitializeSite creates cache structures for a site
func (ns *NoticesStore) InitializeSite(siteID string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.siteCaches[siteID] == nil {
		ns.siteCaches[siteID] = &types.SiteNoticeCache{
			Notices:    make(map[string]*notice.Notice),
			LastLoaded: time.Now().UTC(),
		}
	}
}

// GetSiteCache safely retrieves a site's notice cache
func (ns *NoticesStore) GetSiteCache(siteID string) (*types.SiteNoticeCache, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	cache, exists := ns.siteCaches[siteID]
	return cache, exists
}

// GetNotice retrieves a cached notice by ID.
func (ns *NoticesStore) GetNotice(siteID, noticeID string) (*notice.Notice, bool) {
	cache, exists := ns.GetSiteCache(siteID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	n, found := cache.Notices[noticeID]
	return n, found
}

// SetNotice caches a notice by ID.
func (ns *NoticesStore) SetNotice(siteID string, n *notice.Notice) {
	cache, exists := ns.GetSiteCache(siteID)
	if !exists {
		ns.InitializeSite(siteID)
		cache, _ = ns.GetSiteCache(siteID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.Notices[n.ID] = n
	cache.LastLoaded = time.Now().UTC()
}

// GetActiveNotice retrieves the cached active notice. The second return
// distinguishes "cache cold" from "cached: no live notice".
func (ns *NoticesStore) GetActiveNotice(siteID string) (*notice.Notice, bool) {
	cache, exists := ns.GetSiteCache(siteID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	if !cache.ActiveLoaded {
		return nil, false
	}
	return cache.ActiveNotice, true
}

// SetActiveNotice caches the active notice (nil means no live notice).
func (ns *NoticesStore) SetActiveNotice(siteID string, n *notice.Notice) {
	cache, exists := ns.GetSiteCache(siteID)
	if !exists {
		ns.InitializeSite(siteID)
		cache, _ = ns.GetSiteCache(siteID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.ActiveNotice = n
	cache.ActiveLoaded = true
	if n != nil {
		cache.Notices[n.ID] = n
	}
	cache.LastLoaded = time.Now().UTC()
}

// InvalidateSite drops all cached notices for a site. Called on any catalog
// write so renders never serve a stale active notice.
func (ns *NoticesStore) InvalidateSite(siteID string) {
	cache, exists := ns.GetSiteCache(siteID)
	if !exists {
		return
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.Notices = make(map[string]*notice.Notice)
	cache.ActiveNotice = nil
	cache.ActiveLoaded = false

	if ns.logger != nil {
		ns.logger.Cache().Debug("Notice cache invalidated", "siteId", siteID)
	}
}
