package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityFeedRejectsMissingToken(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws/activity", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivityFeedRejectsForeignToken(t *testing.T) {
	f := newHandlerFixture(t)

	token, err := security.GenerateOperatorToken("op-1", "admin@example.com", "some-other-secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws/activity?token="+token, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivityFeedAcceptsOperatorToken(t *testing.T) {
	f := newHandlerFixture(t)

	token, err := security.GenerateOperatorToken("op-1", "admin@example.com", "test-secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws/activity?token="+token, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	// The token clears auth; a plain GET then fails the websocket
	// handshake, which is as far as a recorder can carry the request.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
