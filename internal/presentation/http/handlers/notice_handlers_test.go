package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteNoticeRemovesRetiredNotice(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedSessionAndNotice(t)
	// Activate a second notice so n-1 is retired and deletable.
	f.seedSecondActiveNotice(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/notices/n-1", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":"n-1"`)

	row, err := f.siteCtx.NoticeRepo().FindByID("n-1")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteNoticeRefusesLiveNoticeWith409(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedSessionAndNotice(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/notices/n-1", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	row, err := f.siteCtx.NoticeRepo().FindByID("n-1")
	require.NoError(t, err)
	assert.NotNil(t, row)
}

func TestDeleteNoticeUnknownIDIs404(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/notices/n-404", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
