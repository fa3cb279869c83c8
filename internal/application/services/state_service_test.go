package services

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/AtRiskMedia/sunset-go/internal/domain/events"
	domainUser "github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroadcaster captures broadcast calls for assertions.
type recordingBroadcaster struct {
	states    []broadcastState
	activated []string
}

type broadcastState struct {
	siteID    string
	sessionID string
	noticeID  string
	isOpen    bool
}

func (b *recordingBroadcaster) AddClientWithSession(siteID, sessionID string) chan string {
	return make(chan string, 1)
}
func (b *recordingBroadcaster) RemoveClientWithSession(ch chan string, siteID, sessionID string) {}
func (b *recordingBroadcaster) GetSessionConnectionCount(siteID, sessionID string) int           { return 0 }
func (b *recordingBroadcaster) BroadcastNoticeState(siteID, sessionID, noticeID string, isOpen bool) {
	b.states = append(b.states, broadcastState{siteID, sessionID, noticeID, isOpen})
}
func (b *recordingBroadcaster) BroadcastNoticeActivated(siteID, noticeID string) {
	b.activated = append(b.activated, noticeID)
}

type serviceFixture struct {
	siteCtx     *site.Context
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	broadcaster *recordingBroadcaster
	state       *StateService
	banner      *BannerService
	session     *SessionService
	notices     *NoticeService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	raw, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })
	require.NoError(t, database.NewTableCreator().CreateSchema(raw))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)

	cacheManager := manager.NewManager(logger)
	cacheManager.InitializeSite("default")

	siteCtx := &site.Context{
		SiteID:       "default",
		Config:       &site.Config{SiteID: "default", JWTSecret: "test-secret"},
		Database:     &site.Database{Conn: raw, SiteID: "default"},
		Status:       "active",
		CacheManager: cacheManager,
		Logger:       logger,
	}

	perfTracker := performance.NewTracker(100)
	broadcaster := &recordingBroadcaster{}

	sessionService := NewSessionService(logger, perfTracker)
	noticeService := NewNoticeService(nil, broadcaster, logger, perfTracker)

	return &serviceFixture{
		siteCtx:     siteCtx,
		logger:      logger,
		perfTracker: perfTracker,
		broadcaster: broadcaster,
		state:       NewStateService(sessionService, noticeService, broadcaster, logger, perfTracker),
		banner:      NewBannerService(sessionService, noticeService, logger, perfTracker),
		session:     sessionService,
		notices:     noticeService,
	}
}

func (f *serviceFixture) seedNotice(t *testing.T, id string, active bool) *notice.Notice {
	t.Helper()
	n := &notice.Notice{
		ID:         id,
		Title:      "Sunset " + id,
		Body:       "The legacy interface is going away.",
		SunsetDate: time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.siteCtx.NoticeRepo().Create(n))
	if active {
		require.NoError(t, f.siteCtx.NoticeRepo().SetActive(id))
		n.IsActive = true
	}
	return n
}

func (f *serviceFixture) seedSession(t *testing.T, sessionID, fingerprintID string) {
	t.Helper()
	require.NoError(t, f.siteCtx.FingerprintRepo().Create(&domainUser.Fingerprint{
		ID:        fingerprintID,
		CreatedAt: time.Now().UTC(),
	}))
	f.seedSessionCacheOnly(t, sessionID, fingerprintID)
}

// seedSessionCacheOnly puts a session in the cache without touching the
// database, for simulating a cache restart over existing rows.
func (f *serviceFixture) seedSessionCacheOnly(t *testing.T, sessionID, fingerprintID string) {
	t.Helper()
	now := time.Now().UTC()
	f.siteCtx.CacheManager.SetSession("default", &types.SessionData{
		SessionID:     sessionID,
		FingerprintID: fingerprintID,
		VisitID:       "visit-" + sessionID,
		CreatedAt:     now,
		LastActivity:  now,
		ExpiresAt:     now.Add(time.Hour),
	})
}

func TestHandlePopupEventDismissPersistsSeen(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	html, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)
	assert.Contains(t, html, "sunset-popup hidden")

	dismissal, err := f.siteCtx.DismissalRepo().Find("fp-1", n.ID)
	require.NoError(t, err)
	require.NotNil(t, dismissal)

	require.Len(t, f.broadcaster.states, 1)
	assert.False(t, f.broadcaster.states[0].isOpen)
	assert.Equal(t, "sess-1", f.broadcaster.states[0].sessionID)
}

func TestHandlePopupEventDismissIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	first, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)
	second, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHandlePopupEventReopenAfterDismiss(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	_, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)

	html, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbOpened}, f.siteCtx)
	require.NoError(t, err)
	assert.NotContains(t, html, "sunset-popup hidden")

	// Reopening must not clear the persisted seen flag.
	dismissal, err := f.siteCtx.DismissalRepo().Find("fp-1", n.ID)
	require.NoError(t, err)
	require.NotNil(t, dismissal)
}

func TestHandlePopupEventRejectsInvalidEvent(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	_, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: "n-1", Verb: "CLOSED"}, f.siteCtx)
	assert.EqualError(t, err, "invalid popup event")
}

func TestHandlePopupEventUnknownSession(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", true)

	_, err := f.state.HandlePopupEvent("sess-missing", events.PopupEvent{NoticeID: "n-1", Verb: events.VerbDismissed}, f.siteCtx)
	assert.EqualError(t, err, "unknown session")
}

func TestHandlePopupEventUnknownNotice(t *testing.T) {
	f := newServiceFixture(t)
	f.seedSession(t, "sess-1", "fp-1")

	_, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: "n-404", Verb: events.VerbDismissed}, f.siteCtx)
	assert.EqualError(t, err, "unknown notice: n-404")
}

func TestBannerFragmentOpensUntilDismissed(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	html, err := f.banner.GetBannerFragment("sess-1", f.siteCtx)
	require.NoError(t, err)
	assert.Contains(t, html, n.Title)
	assert.NotContains(t, html, "sunset-popup hidden")

	_, err = f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)

	html, err = f.banner.GetBannerFragment("sess-1", f.siteCtx)
	require.NoError(t, err)
	assert.Contains(t, html, "sunset-popup hidden")
}

func TestBannerFragmentSeenSurvivesCacheLoss(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)
	f.seedSession(t, "sess-1", "fp-1")

	_, err := f.state.HandlePopupEvent("sess-1", events.PopupEvent{NoticeID: n.ID, Verb: events.VerbDismissed}, f.siteCtx)
	require.NoError(t, err)

	// Simulate a cache restart: only the database remembers the dismissal.
	f.siteCtx.CacheManager = manager.NewManager(f.logger)
	f.siteCtx.CacheManager.InitializeSite("default")
	f.seedSessionCacheOnly(t, "sess-1", "fp-1")

	html, err := f.banner.GetBannerFragment("sess-1", f.siteCtx)
	require.NoError(t, err)
	assert.Contains(t, html, "sunset-popup hidden")
}

func TestBannerFragmentNoActiveNoticeIsEmpty(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", false)
	f.seedSession(t, "sess-1", "fp-1")

	html, err := f.banner.GetBannerFragment("sess-1", f.siteCtx)
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestBannerFragmentUnknownSession(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", true)

	_, err := f.banner.GetBannerFragment("sess-missing", f.siteCtx)
	assert.EqualError(t, err, "unknown session")
}

func TestSeenStoreDegradesWhenDatabaseFails(t *testing.T) {
	f := newServiceFixture(t)
	f.seedSession(t, "sess-1", "fp-1")

	// Drop the table out from under the store.
	_, err := f.siteCtx.Database.Conn.Exec(`DROP TABLE dismissals`)
	require.NoError(t, err)

	store := NewSeenStore(f.siteCtx, "fp-1", f.logger)

	_, seen := store.Get("n-1")
	assert.False(t, seen)

	// A dropped write must not panic or poison the cache.
	store.Set("n-1", "seen")
	state, ok := f.siteCtx.CacheManager.GetFingerprintState("default", "fp-1")
	if ok {
		_, cached := state.SeenNotices["n-1"]
		assert.False(t, cached)
	}
}
