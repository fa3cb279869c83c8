package stores

import (
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionData(sessionID, fingerprintID string, ttl time.Duration) *types.SessionData {
	now := time.Now().UTC()
	return &types.SessionData{
		SessionID:     sessionID,
		FingerprintID: fingerprintID,
		VisitID:       "visit-" + sessionID,
		CreatedAt:     now,
		LastActivity:  now,
		ExpiresAt:     now.Add(ttl),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.InitializeSite("default")

	ss.SetSession("default", newSessionData("sess-1", "fp-1", time.Hour))

	got, found := ss.GetSession("default", "sess-1")
	require.True(t, found)
	assert.Equal(t, "fp-1", got.FingerprintID)
	assert.Equal(t, "visit-sess-1", got.VisitID)
}

func TestGetSessionHonorsExpiry(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.SetSession("default", newSessionData("sess-1", "fp-1", -time.Minute))

	_, found := ss.GetSession("default", "sess-1")
	assert.False(t, found)
}

func TestGetSessionExpiredConcurrentReads(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.SetSession("default", newSessionData("sess-1", "fp-1", -time.Minute))

	// GetSession holds only a read lock, so concurrent lookups of the same
	// expired session must not mutate it. Run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found := ss.GetSession("default", "sess-1")
			assert.False(t, found)
		}()
	}
	wg.Wait()

	// The entry is untouched until the sweep removes it.
	assert.Equal(t, 1, ss.SweepExpiredSessions("default"))
}

func TestGetSessionUnknownSite(t *testing.T) {
	ss := NewSessionsStore(nil)
	_, found := ss.GetSession("nope", "sess-1")
	assert.False(t, found)
}

func TestFingerprintIndexTracksSessions(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.SetSession("default", newSessionData("sess-1", "fp-1", time.Hour))
	ss.SetSession("default", newSessionData("sess-2", "fp-1", time.Hour))
	ss.SetSession("default", newSessionData("sess-3", "fp-2", time.Hour))

	assert.ElementsMatch(t, []string{"sess-1", "sess-2"}, ss.GetSessionsByFingerprint("default", "fp-1"))
	assert.ElementsMatch(t, []string{"sess-3"}, ss.GetSessionsByFingerprint("default", "fp-2"))

	ss.RemoveSession("default", "sess-1")
	assert.ElementsMatch(t, []string{"sess-2"}, ss.GetSessionsByFingerprint("default", "fp-1"))
}

func TestSetSessionRebindsFingerprint(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.SetSession("default", newSessionData("sess-1", "fp-old", time.Hour))
	ss.SetSession("default", newSessionData("sess-1", "fp-new", time.Hour))

	assert.Empty(t, ss.GetSessionsByFingerprint("default", "fp-old"))
	assert.ElementsMatch(t, []string{"sess-1"}, ss.GetSessionsByFingerprint("default", "fp-new"))
}

func TestMarkNoticeSeenCreatesStateOnDemand(t *testing.T) {
	ss := NewSessionsStore(nil)

	ss.MarkNoticeSeen("default", "fp-1", "notice-1", "seen")

	state, found := ss.GetFingerprintState("default", "fp-1")
	require.True(t, found)
	assert.Equal(t, "seen", state.SeenNotices["notice-1"])
	assert.False(t, state.LastActivity.IsZero())
}

func TestMarkNoticeSeenIsMonotonic(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.MarkNoticeSeen("default", "fp-1", "notice-1", "seen")
	ss.MarkNoticeSeen("default", "fp-1", "notice-1", "seen")

	state, found := ss.GetFingerprintState("default", "fp-1")
	require.True(t, found)
	assert.Len(t, state.SeenNotices, 1)
	assert.Equal(t, "seen", state.SeenNotices["notice-1"])
}

func TestSweepExpiredSessions(t *testing.T) {
	ss := NewSessionsStore(nil)
	ss.SetSession("default", newSessionData("live", "fp-1", time.Hour))
	ss.SetSession("default", newSessionData("dead-1", "fp-1", -time.Minute))
	ss.SetSession("default", newSessionData("dead-2", "fp-2", -time.Minute))

	removed := ss.SweepExpiredSessions("default")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, ss.SessionCount("default"))

	assert.ElementsMatch(t, []string{"live"}, ss.GetSessionsByFingerprint("default", "fp-1"))
	assert.Empty(t, ss.GetSessionsByFingerprint("default", "fp-2"))
}

func TestSweepUnknownSiteIsNoop(t *testing.T) {
	ss := NewSessionsStore(nil)
	assert.Zero(t, ss.SweepExpiredSessions("nope"))
}
