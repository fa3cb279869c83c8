package services

import (
	"strings"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SessionService handles session registration and fingerprinting for
// visitors of the legacy interface.
type SessionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a new session service
func NewSessionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// SessionResult holds the result of session operations
type SessionResult struct {
	FingerprintID string `json:"fingerprint"`
	VisitID       string `json:"visitId"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// VisitRequest represents the structure for visit creation requests
type VisitRequest struct {
	SessionID *string `json:"sessionId,omitempty"`
}

// ProcessVisitRequest handles the complete visit registration workflow:
// reuse an existing session, or mint a fingerprint and visit for a new one.
func (s *SessionService) ProcessVisitRequest(req *VisitRequest, siteCtx *site.Context) *SessionResult {
	marker := s.perfTracker.StartOperation("process_visit_request", siteCtx.SiteID)
	defer marker.Complete()

	if req.SessionID == nil || *req.SessionID == "" {
		marker.SetSuccess(false)
		return &SessionResult{
			Success: false,
			Error:   "session ID required",
		}
	}

	var finalFpID, finalVisitID string

	if existingSession, exists := siteCtx.CacheManager.GetSession(siteCtx.SiteID, *req.SessionID); exists {
		finalFpID = existingSession.FingerprintID
		finalVisitID = existingSession.VisitID
	} else {
		if siteCtx.CacheManager.SessionAtCapacity(siteCtx.SiteID) {
			swept := siteCtx.CacheManager.SweepExpiredSessions(siteCtx.SiteID)
			s.logger.Session().Warn("Session cache at capacity", "siteId", siteCtx.SiteID, "swept", swept)
			if siteCtx.CacheManager.SessionAtCapacity(siteCtx.SiteID) {
				marker.SetSuccess(false)
				return &SessionResult{
					Success: false,
					Error:   "session capacity reached",
				}
			}
		}

		finalFpID = security.GenerateULID()
		fingerprint := &user.Fingerprint{ID: finalFpID, CreatedAt: time.Now().UTC()}
		if err := siteCtx.FingerprintRepo().Create(fingerprint); err != nil {
			if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
				s.logger.Session().Error("Failed to create fingerprint", "siteId", siteCtx.SiteID, "error", err)
				marker.SetError(err)
				return &SessionResult{
					Success: false,
					Error:   "failed to create fingerprint",
				}
			}
		}
	}

	if finalVisitID == "" {
		var err error
		finalVisitID, err = s.handleVisitCreation(finalFpID, siteCtx)
		if err != nil {
			s.logger.Session().Error("Failed to create visit", "siteId", siteCtx.SiteID, "error", err)
			marker.SetError(err)
			return &SessionResult{
				Success: false,
				Error:   "failed to create visit",
			}
		}
	}

	s.updateCacheStates(siteCtx, *req.SessionID, finalFpID, finalVisitID)

	marker.SetSuccess(true)
	marker.AddMetadata("fingerprintId", finalFpID)

	return &SessionResult{
		FingerprintID: finalFpID,
		VisitID:       finalVisitID,
		Success:       true,
	}
}

// handleVisitCreation reuses a recent visit for the fingerprint or creates
// a new one when the last visit fell outside the reuse window.
func (s *SessionService) handleVisitCreation(fingerprintID string, siteCtx *site.Context) (string, error) {
	if latestVisit, err := siteCtx.VisitRepo().FindLatestByFingerprint(fingerprintID); err == nil && latestVisit != nil {
		if time.Since(latestVisit.CreatedAt) < config.VisitReuseWindow {
			return latestVisit.ID, nil
		}
	}

	visitID := security.GenerateULID()
	visit := &user.Visit{
		ID:            visitID,
		FingerprintID: fingerprintID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := siteCtx.VisitRepo().Create(visit); err != nil {
		return "", err
	}

	return visitID, nil
}

// updateCacheStates records the session and fingerprint state in the cache
func (s *SessionService) updateCacheStates(siteCtx *site.Context, sessionID, fingerprintID, visitID string) {
	now := time.Now().UTC()

	siteCtx.CacheManager.SetSession(siteCtx.SiteID, &types.SessionData{
		SessionID:     sessionID,
		FingerprintID: fingerprintID,
		VisitID:       visitID,
		CreatedAt:     now,
		LastActivity:  now,
		ExpiresAt:     now.Add(config.SessionTTL),
	})

	if _, exists := siteCtx.CacheManager.GetFingerprintState(siteCtx.SiteID, fingerprintID); !exists {
		siteCtx.CacheManager.SetFingerprintState(siteCtx.SiteID, &types.FingerprintState{
			FingerprintID: fingerprintID,
			SeenNotices:   make(map[string]string),
			LastActivity:  now,
		})
	}

	s.logger.Session().Debug("Session registered",
		"siteId", siteCtx.SiteID, "sessionId", logging.SanitizeSessionID(sessionID), "fingerprintId", fingerprintID)
}

// ResolveFingerprint maps a session ID onto its fingerprint, if the session
// is known and unexpired.
func (s *SessionService) ResolveFingerprint(sessionID string, siteCtx *site.Context) (string, bool) {
	session, exists := siteCtx.CacheManager.GetSession(siteCtx.SiteID, sessionID)
	if !exists {
		return "", false
	}
	return session.FingerprintID, true
}
