package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNoticeStartsInactive(t *testing.T) {
	f := newServiceFixture(t)

	sunset := time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC)
	created, err := f.notices.CreateNotice(&NoticeRequest{
		Title:      "New sunset notice",
		Body:       "Details here.",
		SunsetDate: &sunset,
	}, f.siteCtx)
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	active, err := f.notices.GetActiveNotice(f.siteCtx)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The catalog cache serves it by ID straight away.
	got, err := f.notices.GetNotice(created.ID, f.siteCtx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New sunset notice", got.Title)
}

func TestActivateNoticeSwapsTheLiveNotice(t *testing.T) {
	f := newServiceFixture(t)
	first := f.seedNotice(t, "n-1", true)
	second := f.seedNotice(t, "n-2", false)

	activated, err := f.notices.ActivateNotice(second.ID, f.siteCtx)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	active, err := f.notices.GetActiveNotice(f.siteCtx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	reloaded, err := f.siteCtx.NoticeRepo().FindByID(first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	assert.Equal(t, []string{second.ID}, f.broadcaster.activated)
}

func TestActivateNoticeUnknownID(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", true)

	_, err := f.notices.ActivateNotice("n-404", f.siteCtx)
	assert.Error(t, err)
	assert.Empty(t, f.broadcaster.activated)
}

func TestUpdateNoticeStampsChangedAndRefreshesCache(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)

	// Warm the active-notice cache before the edit.
	_, err := f.notices.GetActiveNotice(f.siteCtx)
	require.NoError(t, err)

	updated, err := f.notices.UpdateNotice(n.ID, &NoticeRequest{
		Title: "Edited title",
		Body:  "Edited body.",
	}, f.siteCtx)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.NotNil(t, updated.Changed)

	active, err := f.notices.GetActiveNotice(f.siteCtx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Edited title", active.Title)
}

func TestUpdateNoticeUnknownIDReturnsNil(t *testing.T) {
	f := newServiceFixture(t)

	updated, err := f.notices.UpdateNotice("n-404", &NoticeRequest{Title: "x", Body: "y"}, f.siteCtx)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeleteNoticeRefusesTheLiveNotice(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", true)

	_, err := f.notices.DeleteNotice(n.ID, f.siteCtx)
	require.ErrorIs(t, err, ErrNoticeActive)

	still, err := f.siteCtx.NoticeRepo().FindByID(n.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.True(t, still.IsActive)
}

func TestDeleteNoticeRemovesRowAndCache(t *testing.T) {
	f := newServiceFixture(t)
	n := f.seedNotice(t, "n-1", false)

	// Warm the by-ID cache so the delete has something to invalidate.
	_, err := f.notices.GetNotice(n.ID, f.siteCtx)
	require.NoError(t, err)

	deleted, err := f.notices.DeleteNotice(n.ID, f.siteCtx)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, n.ID, deleted.ID)

	got, err := f.notices.GetNotice(n.ID, f.siteCtx)
	require.NoError(t, err)
	assert.Nil(t, got)

	row, err := f.siteCtx.NoticeRepo().FindByID(n.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteNoticeUnknownIDReturnsNil(t *testing.T) {
	f := newServiceFixture(t)

	deleted, err := f.notices.DeleteNotice("n-404", f.siteCtx)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestGetAllNotices(t *testing.T) {
	f := newServiceFixture(t)
	f.seedNotice(t, "n-1", false)
	f.seedNotice(t, "n-2", false)

	all, err := f.notices.GetAllNotices(f.siteCtx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
