package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// NoticeService manages the sunset notice catalog: operator CRUD, the
// single-active-notice rule, illustration uploads, and the fan-out that
// happens when a notice goes live.
type NoticeService struct {
	emailService email.Service
	broadcaster  messaging.Broadcaster
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewNoticeService creates a new notice service. emailService may be nil
// when no Resend API key is configured; activation then skips the reminder.
func NewNoticeService(emailService email.Service, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *NoticeService {
	return &NoticeService{
		emailService: emailService,
		broadcaster:  broadcaster,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// NoticeRequest is the operator-facing payload for creating or updating a notice.
type NoticeRequest struct {
	Title           string     `json:"title" binding:"required"`
	Body            string     `json:"body" binding:"required"`
	SunsetDate      *time.Time `json:"sunsetDate,omitempty"`
	LearnMoreURL    string     `json:"learnMoreUrl,omitempty"`
	NewInterfaceURL string     `json:"newInterfaceUrl,omitempty"`
	ImageData       string     `json:"imageData,omitempty"` // base64 upload, optional
}

// GetActiveNotice returns the live notice for the site, consulting the cache
// before the repository. Returns nil when no notice is live.
func (s *NoticeService) GetActiveNotice(siteCtx *site.Context) (*notice.Notice, error) {
	if cached, ok := siteCtx.CacheManager.GetActiveNotice(siteCtx.SiteID); ok {
		return cached, nil
	}

	active, err := siteCtx.NoticeRepo().FindActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active notice: %w", err)
	}

	siteCtx.CacheManager.SetActiveNotice(siteCtx.SiteID, active)
	return active, nil
}

// GetNotice returns one notice by ID, cache first.
func (s *NoticeService) GetNotice(noticeID string, siteCtx *site.Context) (*notice.Notice, error) {
	if cached, ok := siteCtx.CacheManager.GetNotice(siteCtx.SiteID, noticeID); ok {
		return cached, nil
	}

	n, err := siteCtx.NoticeRepo().FindByID(noticeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notice %s: %w", noticeID, err)
	}
	if n != nil {
		siteCtx.CacheManager.SetNotice(siteCtx.SiteID, n)
	}
	return n, nil
}

// GetAllNotices returns the full catalog for the operator dashboard.
func (s *NoticeService) GetAllNotices(siteCtx *site.Context) ([]*notice.Notice, error) {
	all, err := siteCtx.NoticeRepo().FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load notices: %w", err)
	}
	return all, nil
}

// CreateNotice mints a new notice. Notices are created inactive: content
// changes get a new ID and a deliberate activation step, so every client
// sees the popup again exactly when an operator decides they should.
func (s *NoticeService) CreateNotice(req *NoticeRequest, siteCtx *site.Context) (*notice.Notice, error) {
	marker := s.perfTracker.StartOperation("create_notice", siteCtx.SiteID)
	defer marker.Complete()

	n := &notice.Notice{
		ID:              security.GenerateULID(),
		Title:           req.Title,
		Body:            req.Body,
		LearnMoreURL:    req.LearnMoreURL,
		NewInterfaceURL: req.NewInterfaceURL,
		IsActive:        false,
		CreatedAt:       time.Now().UTC(),
	}
	if req.SunsetDate != nil {
		n.SunsetDate = *req.SunsetDate
	}

	if req.ImageData != "" {
		imageSrc, err := s.processIllustration(req.ImageData, n.ID, siteCtx)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		n.ImageSrc = &imageSrc
	}

	if err := siteCtx.NoticeRepo().Create(n); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}

	siteCtx.CacheManager.SetNotice(siteCtx.SiteID, n)
	s.logger.Notice().Info("Notice created", "siteId", siteCtx.SiteID, "noticeId", n.ID, "title", n.Title)

	marker.SetSuccess(true)
	return n, nil
}

// UpdateNotice edits an existing notice in place. Material copy changes
// should go through CreateNotice instead so dismissals reset.
func (s *NoticeService) UpdateNotice(noticeID string, req *NoticeRequest, siteCtx *site.Context) (*notice.Notice, error) {
	marker := s.perfTracker.StartOperation("update_notice", siteCtx.SiteID)
	defer marker.Complete()

	n, err := siteCtx.NoticeRepo().FindByID(noticeID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load notice %s: %w", noticeID, err)
	}
	if n == nil {
		marker.SetSuccess(false)
		return nil, nil
	}

	n.Title = req.Title
	n.Body = req.Body
	if req.SunsetDate != nil {
		n.SunsetDate = *req.SunsetDate
	}
	n.LearnMoreURL = req.LearnMoreURL
	n.NewInterfaceURL = req.NewInterfaceURL
	now := time.Now().UTC()
	n.Changed = &now

	if req.ImageData != "" {
		if n.ImageSrc != nil && config.MediaEnabled {
			processor := s.imageProcessor(siteCtx)
			if err := processor.DeleteNoticeImage(*n.ImageSrc); err != nil {
				s.logger.Notice().Warn("Failed to remove previous illustration", "siteId", siteCtx.SiteID, "noticeId", n.ID, "error", err)
			}
		}
		imageSrc, err := s.processIllustration(req.ImageData, n.ID, siteCtx)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		n.ImageSrc = &imageSrc
	}

	if err := siteCtx.NoticeRepo().Update(n); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to update notice: %w", err)
	}

	siteCtx.CacheManager.SetNotice(siteCtx.SiteID, n)
	if n.IsActive {
		siteCtx.CacheManager.SetActiveNotice(siteCtx.SiteID, n)
	}
	s.logger.Notice().Info("Notice updated", "siteId", siteCtx.SiteID, "noticeId", n.ID)

	marker.SetSuccess(true)
	return n, nil
}

// ErrNoticeActive is returned when an operator tries to delete the notice
// that is currently live. Deactivate it by activating another notice first.
var ErrNoticeActive = errors.New("cannot delete the active notice")

// DeleteNotice removes a notice, its dismissal rows, and its illustration
// files. The live notice is refused: deleting it out from under connected
// clients would leave their banners pointing at a notice that no longer
// exists. Returns the deleted notice, or nil when the ID is unknown.
func (s *NoticeService) DeleteNotice(noticeID string, siteCtx *site.Context) (*notice.Notice, error) {
	marker := s.perfTracker.StartOperation("delete_notice", siteCtx.SiteID)
	defer marker.Complete()

	n, err := siteCtx.NoticeRepo().FindByID(noticeID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load notice %s: %w", noticeID, err)
	}
	if n == nil {
		marker.SetSuccess(false)
		return nil, nil
	}
	if n.IsActive {
		marker.SetError(ErrNoticeActive)
		return nil, ErrNoticeActive
	}

	if err := siteCtx.NoticeRepo().Delete(noticeID); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to delete notice %s: %w", noticeID, err)
	}

	if n.ImageSrc != nil && config.MediaEnabled {
		if err := s.imageProcessor(siteCtx).DeleteNoticeImage(*n.ImageSrc); err != nil {
			s.logger.Notice().Warn("Failed to remove illustration of deleted notice",
				"siteId", siteCtx.SiteID, "noticeId", noticeID, "error", err)
		}
	}

	siteCtx.CacheManager.InvalidateNotices(siteCtx.SiteID)
	s.logger.Notice().Info("Notice deleted", "siteId", siteCtx.SiteID, "noticeId", noticeID)

	marker.SetSuccess(true)
	return n, nil
}

// ActivateNotice makes one notice live, deactivating any other. The notice
// cache is invalidated, connected clients are told to re-fetch their banner,
// and subscribed operators get a reminder email.
func (s *NoticeService) ActivateNotice(noticeID string, siteCtx *site.Context) (*notice.Notice, error) {
	marker := s.perfTracker.StartOperation("activate_notice", siteCtx.SiteID)
	defer marker.Complete()

	if err := siteCtx.NoticeRepo().SetActive(noticeID); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to activate notice %s: %w", noticeID, err)
	}

	siteCtx.CacheManager.InvalidateNotices(siteCtx.SiteID)

	n, err := siteCtx.NoticeRepo().FindByID(noticeID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to reload notice %s: %w", noticeID, err)
	}
	if n == nil {
		// A concurrent delete can race the activation commit.
		err := fmt.Errorf("notice %s disappeared during activation", noticeID)
		marker.SetError(err)
		return nil, err
	}

	siteCtx.CacheManager.SetNotice(siteCtx.SiteID, n)
	siteCtx.CacheManager.SetActiveNotice(siteCtx.SiteID, n)

	s.logger.Notice().Info("Notice activated", "siteId", siteCtx.SiteID, "noticeId", noticeID)
	s.broadcaster.BroadcastNoticeActivated(siteCtx.SiteID, noticeID)

	go s.notifySubscribedOperators(n, siteCtx)

	marker.SetSuccess(true)
	return n, nil
}

// notifySubscribedOperators sends the activation reminder. Failures are
// logged, never surfaced: email is best-effort.
func (s *NoticeService) notifySubscribedOperators(n *notice.Notice, siteCtx *site.Context) {
	if s.emailService == nil {
		return
	}

	operators, err := siteCtx.OperatorRepo().FindSubscribed()
	if err != nil {
		s.logger.Email().Error("Failed to load subscribed operators", "siteId", siteCtx.SiteID, "error", err)
		return
	}

	sunsetDate := ""
	if !n.SunsetDate.IsZero() {
		sunsetDate = n.SunsetDate.Format("January 2, 2006")
	}

	for _, operator := range operators {
		if err := s.emailService.SendNoticeActivatedEmail(operator.Email, siteCtx.SiteID, n.Title, sunsetDate, ""); err != nil {
			s.logger.Email().Error("Failed to send activation reminder",
				"siteId", siteCtx.SiteID, "noticeId", n.ID, "to", operator.Email, "error", err)
			continue
		}
		s.logger.Email().Info("Activation reminder sent", "siteId", siteCtx.SiteID, "noticeId", n.ID, "to", operator.Email)
	}
}

func (s *NoticeService) processIllustration(imageData, noticeID string, siteCtx *site.Context) (string, error) {
	if !config.MediaEnabled {
		return "", fmt.Errorf("media uploads are disabled")
	}

	processor := s.imageProcessor(siteCtx)
	imageSrc, thumbnails, err := processor.ProcessNoticeImage(imageData, noticeID)
	if err != nil {
		return "", fmt.Errorf("failed to process illustration: %w", err)
	}

	s.logger.Notice().Debug("Illustration processed",
		"siteId", siteCtx.SiteID, "noticeId", noticeID, "imageSrc", imageSrc, "thumbnails", len(thumbnails))
	return imageSrc, nil
}

func (s *NoticeService) imageProcessor(siteCtx *site.Context) *media.ImageProcessor {
	basePath := filepath.Join(config.HomeDir, "config", siteCtx.SiteID, "media")
	return media.NewImageProcessor(basePath)
}
