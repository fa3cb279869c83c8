package services

import (
	"fmt"

	"github.com/AtRiskMedia/sunset-go/internal/domain/events"
	"github.com/AtRiskMedia/sunset-go/internal/domain/popup"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/templates"
)

// StateService applies popup events against the visibility state machine
// and answers with the refreshed fragment.
type StateService struct {
	sessionService *SessionService
	noticeService  *NoticeService
	broadcaster    messaging.Broadcaster
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewStateService creates a new state service
func NewStateService(sessionService *SessionService, noticeService *NoticeService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateService {
	return &StateService{
		sessionService: sessionService,
		noticeService:  noticeService,
		broadcaster:    broadcaster,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// HandlePopupEvent runs one OPENED or DISMISSED activation through the popup
// controller for the session's fingerprint and returns the re-rendered
// fragment. Both verbs are idempotent: replaying an event leaves state and
// markup unchanged.
func (s *StateService) HandlePopupEvent(sessionID string, event events.PopupEvent, siteCtx *site.Context) (string, error) {
	marker := s.perfTracker.StartOperation("handle_popup_event", siteCtx.SiteID)
	defer marker.Complete()

	if !event.IsValid() {
		marker.SetSuccess(false)
		return "", fmt.Errorf("invalid popup event")
	}

	fingerprintID, ok := s.sessionService.ResolveFingerprint(sessionID, siteCtx)
	if !ok {
		marker.SetSuccess(false)
		return "", fmt.Errorf("unknown session")
	}

	notice, err := s.noticeService.GetNotice(event.NoticeID, siteCtx)
	if err != nil {
		marker.SetError(err)
		return "", err
	}
	if notice == nil {
		marker.SetSuccess(false)
		return "", fmt.Errorf("unknown notice: %s", event.NoticeID)
	}

	store := NewSeenStore(siteCtx, fingerprintID, s.logger)
	controller := popup.NewController(notice.ID, store, nil)
	controller.Init()

	switch event.Verb {
	case events.VerbOpened:
		controller.Open()
	case events.VerbDismissed:
		controller.Close()
	}

	s.logger.Notice().Info("Popup event applied",
		"siteId", siteCtx.SiteID, "noticeId", notice.ID, "verb", event.Verb,
		"fingerprintId", fingerprintID, "popupOpen", controller.IsOpen())

	s.broadcaster.BroadcastNoticeState(siteCtx.SiteID, sessionID, notice.ID, controller.IsOpen())

	html, err := templates.RenderBanner(templates.BannerProps{
		Notice:    notice,
		PopupOpen: controller.IsOpen(),
	})
	if err != nil {
		marker.SetError(err)
		return "", err
	}

	marker.SetSuccess(true)
	marker.AddMetadata("verb", event.Verb)
	return html, nil
}
