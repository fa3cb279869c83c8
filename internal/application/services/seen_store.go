// Package services provides application-level orchestration services
package services

import (
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/popup"
	domainUser "github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
)

// dismissalSeenStore adapts the dismissals table and the fingerprint state
// cache to the popup.SeenStore contract for one fingerprint. Keys are notice
// IDs. When the database is unreachable it degrades to always-absent lookups
// and dropped writes, so the popup simply reopens on the next load.
type dismissalSeenStore struct {
	siteCtx       *site.Context
	fingerprintID string
	logger        *logging.ChanneledLogger
}

// NewSeenStore builds a popup.SeenStore bound to one fingerprint on one site.
func NewSeenStore(siteCtx *site.Context, fingerprintID string, logger *logging.ChanneledLogger) popup.SeenStore {
	return &dismissalSeenStore{
		siteCtx:       siteCtx,
		fingerprintID: fingerprintID,
		logger:        logger,
	}
}

func (s *dismissalSeenStore) Get(noticeID string) (string, bool) {
	if state, ok := s.siteCtx.CacheManager.GetFingerprintState(s.siteCtx.SiteID, s.fingerprintID); ok {
		if marker, seen := state.SeenNotices[noticeID]; seen {
			return marker, true
		}
	}

	dismissal, err := s.siteCtx.DismissalRepo().Find(s.fingerprintID, noticeID)
	if err != nil {
		s.logger.Session().Warn("Seen lookup degraded, treating as absent",
			"siteId", s.siteCtx.SiteID, "fingerprintId", s.fingerprintID, "noticeId", noticeID, "error", err)
		return "", false
	}
	if dismissal == nil {
		return "", false
	}

	s.siteCtx.CacheManager.MarkNoticeSeen(s.siteCtx.SiteID, s.fingerprintID, noticeID, popup.SeenMarker)
	return popup.SeenMarker, true
}

func (s *dismissalSeenStore) Set(noticeID, marker string) {
	dismissal := &domainUser.Dismissal{
		FingerprintID: s.fingerprintID,
		NoticeID:      noticeID,
		DismissedAt:   time.Now().UTC(),
	}
	if err := s.siteCtx.DismissalRepo().Record(dismissal); err != nil {
		s.logger.Session().Warn("Seen write dropped",
			"siteId", s.siteCtx.SiteID, "fingerprintId", s.fingerprintID, "noticeId", noticeID, "error", err)
		return
	}

	s.siteCtx.CacheManager.MarkNoticeSeen(s.siteCtx.SiteID, s.fingerprintID, noticeID, marker)
}
