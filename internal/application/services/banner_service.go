package services

import (
	"fmt"

	"github.com/AtRiskMedia/sunset-go/internal/domain/popup"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/templates"
)

// BannerService assembles the banner-plus-popup fragment for one visitor.
// The popup controller decides visibility; this service wires it to the
// dismissal store and the fragment renderer.
type BannerService struct {
	sessionService *SessionService
	noticeService  *NoticeService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewBannerService creates a new banner service
func NewBannerService(sessionService *SessionService, noticeService *NoticeService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *BannerService {
	return &BannerService{
		sessionService: sessionService,
		noticeService:  noticeService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// fragmentSurface records the controller's visibility decision so the
// renderer can reflect it in the emitted markup.
type fragmentSurface struct {
	visible bool
}

func (f *fragmentSurface) SetVisible(visible bool) {
	f.visible = visible
}

// GetBannerFragment resolves the session to a fingerprint, runs the popup
// controller's load-time logic against the active notice, and renders the
// fragment. An unknown session or a site with no live notice yields an
// empty fragment.
func (s *BannerService) GetBannerFragment(sessionID string, siteCtx *site.Context) (string, error) {
	marker := s.perfTracker.StartOperation("render_banner_fragment", siteCtx.SiteID)
	defer marker.Complete()

	fingerprintID, ok := s.sessionService.ResolveFingerprint(sessionID, siteCtx)
	if !ok {
		marker.SetSuccess(false)
		return "", fmt.Errorf("unknown session")
	}

	activeNotice, err := s.noticeService.GetActiveNotice(siteCtx)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	if activeNotice == nil {
		marker.SetSuccess(true)
		return "", nil
	}

	store := NewSeenStore(siteCtx, fingerprintID, s.logger)
	surface := &fragmentSurface{}
	controller := popup.NewController(activeNotice.ID, store, surface)
	controller.Init()

	html, err := templates.RenderBanner(templates.BannerProps{
		Notice:    activeNotice,
		PopupOpen: controller.IsOpen(),
	})
	if err != nil {
		marker.SetError(err)
		return "", err
	}

	s.logger.Notice().Debug("Banner fragment rendered",
		"siteId", siteCtx.SiteID, "noticeId", activeNotice.ID,
		"fingerprintId", fingerprintID, "popupOpen", surface.visible)

	marker.SetSuccess(true)
	return html, nil
}
