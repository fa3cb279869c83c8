package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProcessVisitRequestMintsNewSession(t *testing.T) {
	f := newServiceFixture(t)

	result := f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("sess-1")}, f.siteCtx)
	require.True(t, result.Success, result.Error)
	assert.NotEmpty(t, result.FingerprintID)
	assert.NotEmpty(t, result.VisitID)

	// Fingerprint and visit are durable.
	exists, err := f.siteCtx.FingerprintRepo().Exists(result.FingerprintID)
	require.NoError(t, err)
	assert.True(t, exists)

	latest, err := f.siteCtx.VisitRepo().FindLatestByFingerprint(result.FingerprintID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, result.VisitID, latest.ID)

	// Session is resolvable afterwards.
	fpID, ok := f.session.ResolveFingerprint("sess-1", f.siteCtx)
	require.True(t, ok)
	assert.Equal(t, result.FingerprintID, fpID)
}

func TestProcessVisitRequestReusesExistingSession(t *testing.T) {
	f := newServiceFixture(t)

	first := f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("sess-1")}, f.siteCtx)
	require.True(t, first.Success)

	second := f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("sess-1")}, f.siteCtx)
	require.True(t, second.Success)

	assert.Equal(t, first.FingerprintID, second.FingerprintID)
	assert.Equal(t, first.VisitID, second.VisitID)
}

func TestProcessVisitRequestSeparateSessionsGetSeparateFingerprints(t *testing.T) {
	f := newServiceFixture(t)

	first := f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("sess-1")}, f.siteCtx)
	second := f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("sess-2")}, f.siteCtx)
	require.True(t, first.Success)
	require.True(t, second.Success)

	assert.NotEqual(t, first.FingerprintID, second.FingerprintID)
}

func TestProcessVisitRequestRequiresSessionID(t *testing.T) {
	f := newServiceFixture(t)

	result := f.session.ProcessVisitRequest(&VisitRequest{}, f.siteCtx)
	assert.False(t, result.Success)
	assert.Equal(t, "session ID required", result.Error)

	result = f.session.ProcessVisitRequest(&VisitRequest{SessionID: strPtr("")}, f.siteCtx)
	assert.False(t, result.Success)
	assert.Equal(t, "session ID required", result.Error)
}

func TestResolveFingerprintUnknownSession(t *testing.T) {
	f := newServiceFixture(t)

	_, ok := f.session.ResolveFingerprint("sess-missing", f.siteCtx)
	assert.False(t, ok)
}
