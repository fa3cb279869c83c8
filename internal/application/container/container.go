// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"path/filepath"

	"github.com/AtRiskMedia/sunset-go/internal/application/services"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Observability
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	// Infrastructure Dependencies
	SiteManager         *site.Manager
	CacheManager        *manager.Manager
	Broadcaster         messaging.Broadcaster
	ActivityBroadcaster *messaging.ActivityBroadcaster
	EmailService        email.Service

	// Application Services (stateless singletons)
	SessionService *services.SessionService
	NoticeService  *services.NoticeService
	BannerService  *services.BannerService
	StateService   *services.StateService
	AuthService    *services.AuthService
}

// NewContainer creates and wires all singleton services
func NewContainer(siteManager *site.Manager, cacheManager *manager.Manager, logger *logging.ChanneledLogger) (*Container, error) {
	if logger == nil {
		loggerConfig := logging.DefaultLoggerConfig()
		loggerConfig.LogDirectory = filepath.Join(config.HomeDir, "logs")

		var err error
		logger, err = logging.NewChanneledLogger(loggerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create channeled logger: %w", err)
		}
	}

	perfTracker := performance.NewTracker(config.MaxRecentMarkers)
	broadcaster := messaging.NewSSEBroadcaster(logger)
	activityBroadcaster := messaging.NewActivityBroadcaster(siteManager, cacheManager, logger)

	// Email is optional; without an API key notices still activate,
	// operators just don't get notified.
	emailService, err := email.NewService()
	if err != nil {
		logger.Email().Warn("Email service disabled", "reason", err.Error())
		emailService = nil
	}

	sessionService := services.NewSessionService(logger, perfTracker)
	noticeService := services.NewNoticeService(emailService, broadcaster, logger, perfTracker)
	bannerService := services.NewBannerService(sessionService, noticeService, logger, perfTracker)
	stateService := services.NewStateService(sessionService, noticeService, broadcaster, logger, perfTracker)
	authService := services.NewAuthService(logger)

	return &Container{
		Logger:      logger,
		PerfTracker: perfTracker,

		SiteManager:         siteManager,
		CacheManager:        cacheManager,
		Broadcaster:         broadcaster,
		ActivityBroadcaster: activityBroadcaster,
		EmailService:        emailService,

		SessionService: sessionService,
		NoticeService:  noticeService,
		BannerService:  bannerService,
		StateService:   stateService,
		AuthService:    authService,
	}, nil
}
