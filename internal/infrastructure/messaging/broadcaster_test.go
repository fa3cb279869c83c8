package messaging

import (
	"log/slog"
	"testing"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *SSEBroadcaster {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return NewSSEBroadcaster(logger)
}

func drain(ch chan string) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestBroadcastNoticeStateReachesAllTabsOfSession(t *testing.T) {
	b := newTestBroadcaster(t)

	tab1 := b.AddClientWithSession("site-a", "sess-1")
	tab2 := b.AddClientWithSession("site-a", "sess-1")
	other := b.AddClientWithSession("site-a", "sess-2")
	defer b.RemoveClientWithSession(tab1, "site-a", "sess-1")
	defer b.RemoveClientWithSession(tab2, "site-a", "sess-1")
	defer b.RemoveClientWithSession(other, "site-a", "sess-2")

	b.BroadcastNoticeState("site-a", "sess-1", "n-1", false)

	want := "event: notice_state\ndata: {\"noticeId\":\"n-1\",\"isOpen\":false}\n\n"
	assert.Equal(t, []string{want}, drain(tab1))
	assert.Equal(t, []string{want}, drain(tab2))
	assert.Empty(t, drain(other))
}

func TestBroadcastNoticeActivatedReachesEverySession(t *testing.T) {
	b := newTestBroadcaster(t)

	s1 := b.AddClientWithSession("site-b", "sess-1")
	s2 := b.AddClientWithSession("site-b", "sess-2")
	elsewhere := b.AddClientWithSession("site-c", "sess-3")
	defer b.RemoveClientWithSession(s1, "site-b", "sess-1")
	defer b.RemoveClientWithSession(s2, "site-b", "sess-2")
	defer b.RemoveClientWithSession(elsewhere, "site-c", "sess-3")

	b.BroadcastNoticeActivated("site-b", "n-2")

	want := "event: notice_activated\ndata: {\"noticeId\":\"n-2\"}\n\n"
	assert.Equal(t, []string{want}, drain(s1))
	assert.Equal(t, []string{want}, drain(s2))
	assert.Empty(t, drain(elsewhere))
}

func TestSessionConnectionCount(t *testing.T) {
	b := newTestBroadcaster(t)

	assert.Zero(t, b.GetSessionConnectionCount("site-d", "sess-1"))

	ch1 := b.AddClientWithSession("site-d", "sess-1")
	ch2 := b.AddClientWithSession("site-d", "sess-1")
	assert.Equal(t, 2, b.GetSessionConnectionCount("site-d", "sess-1"))

	b.RemoveClientWithSession(ch1, "site-d", "sess-1")
	assert.Equal(t, 1, b.GetSessionConnectionCount("site-d", "sess-1"))

	b.RemoveClientWithSession(ch2, "site-d", "sess-1")
	assert.Zero(t, b.GetSessionConnectionCount("site-d", "sess-1"))
}

func TestBroadcastDropsWhenChannelFull(t *testing.T) {
	b := newTestBroadcaster(t)

	ch := b.AddClientWithSession("site-e", "sess-1")
	defer b.RemoveClientWithSession(ch, "site-e", "sess-1")

	// Channel capacity is 10; the overflow must be dropped, not block.
	for i := 0; i < 15; i++ {
		b.BroadcastNoticeState("site-e", "sess-1", "n-1", true)
	}

	assert.Len(t, drain(ch), 10)
}
