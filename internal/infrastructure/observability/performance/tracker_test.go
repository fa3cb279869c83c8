package performance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAggregatesCompletedMarkers(t *testing.T) {
	tracker := NewTracker(10)

	for i := 0; i < 3; i++ {
		m := tracker.StartOperation("render_banner_fragment", "default")
		m.Complete()
	}
	failed := tracker.StartOperation("render_banner_fragment", "default")
	failed.SetSuccess(false)
	failed.Complete()

	stats := tracker.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "render_banner_fragment", stats[0].Operation)
	assert.EqualValues(t, 4, stats[0].Count)
	assert.EqualValues(t, 1, stats[0].Failures)
}

func TestMarkerCompleteIsIdempotent(t *testing.T) {
	tracker := NewTracker(10)

	m := tracker.StartOperation("op", "default")
	m.Complete()
	m.Complete()

	stats := tracker.Stats()
	require.Len(t, stats, 1)
	assert.EqualValues(t, 1, stats[0].Count)
}

func TestMarkerSetError(t *testing.T) {
	tracker := NewTracker(10)

	m := tracker.StartOperation("op", "default")
	m.SetError(errors.New("boom"))
	m.SetError(nil)
	assert.Equal(t, "boom", m.Error)
}

func TestTrackerBoundsRecentMarkers(t *testing.T) {
	tracker := NewTracker(2)

	for i := 0; i < 5; i++ {
		tracker.StartOperation("op", "default").Complete()
	}

	stats := tracker.Stats()
	require.Len(t, stats, 1)
	assert.EqualValues(t, 5, stats[0].Count)
}
