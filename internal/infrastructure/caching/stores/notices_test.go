package stores

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedNotice(id string) *notice.Notice {
	return &notice.Notice{
		ID:         id,
		Title:      "Sunset notice " + id,
		Body:       "body",
		SunsetDate: time.Now().UTC().AddDate(0, 6, 0),
		CreatedAt:  time.Now().UTC(),
	}
}

func TestNoticeRoundTrip(t *testing.T) {
	ns := NewNoticesStore(nil)
	ns.SetNotice("default", newCachedNotice("n-1"))

	got, found := ns.GetNotice("default", "n-1")
	require.True(t, found)
	assert.Equal(t, "n-1", got.ID)

	_, found = ns.GetNotice("default", "n-2")
	assert.False(t, found)
}

func TestActiveNoticeColdVsCachedNil(t *testing.T) {
	ns := NewNoticesStore(nil)

	// Cold cache: caller must hit the repository.
	_, loaded := ns.GetActiveNotice("default")
	assert.False(t, loaded)

	// Cached "no live notice" is a valid answer.
	ns.SetActiveNotice("default", nil)
	got, loaded := ns.GetActiveNotice("default")
	assert.True(t, loaded)
	assert.Nil(t, got)
}

func TestSetActiveNoticeAlsoCachesByID(t *testing.T) {
	ns := NewNoticesStore(nil)
	ns.SetActiveNotice("default", newCachedNotice("n-1"))

	byID, found := ns.GetNotice("default", "n-1")
	require.True(t, found)
	assert.Equal(t, "n-1", byID.ID)
}

func TestInvalidateSiteMakesCacheCold(t *testing.T) {
	ns := NewNoticesStore(nil)
	ns.SetActiveNotice("default", newCachedNotice("n-1"))

	ns.InvalidateSite("default")

	_, found := ns.GetNotice("default", "n-1")
	assert.False(t, found)
	_, loaded := ns.GetActiveNotice("default")
	assert.False(t, loaded)
}
