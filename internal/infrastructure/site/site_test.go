package site

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	prev := config.HomeDir
	config.HomeDir = home
	t.Cleanup(func() { config.HomeDir = prev })
	return home
}

func TestLoadSiteConfigDefaultsWhenFileMissing(t *testing.T) {
	home := withTempHome(t)

	cfg, err := LoadSiteConfig("default", nil)
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.SiteID)
	assert.Equal(t, []string{"*"}, cfg.Domains)
	assert.Equal(t, "active", cfg.Status)
	assert.False(t, cfg.TursoEnabled)
	assert.Equal(t, filepath.Join(home, "db", "default", "sunset.db"), cfg.SQLitePath)
}

func TestLoadSiteConfigReadsEnvJSON(t *testing.T) {
	home := withTempHome(t)

	dir := filepath.Join(home, "config", "acme")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env.json"), []byte(`{
		"domains": ["legacy.acme.com"],
		"TURSO_DATABASE_URL": "libsql://acme.turso.io",
		"TURSO_AUTH_TOKEN": "tok",
		"TURSO_ENABLED": true,
		"JWT_SECRET": "site-secret"
	}`), 0644))

	cfg, err := LoadSiteConfig("acme", nil)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.SiteID)
	assert.Equal(t, []string{"legacy.acme.com"}, cfg.Domains)
	assert.True(t, cfg.TursoEnabled)
	assert.Equal(t, "libsql://acme.turso.io", cfg.TursoDatabase)
	assert.Equal(t, "site-secret", cfg.JWTSecret)
}

func TestLoadSiteConfigRejectsMalformedJSON(t *testing.T) {
	home := withTempHome(t)

	dir := filepath.Join(home, "config", "broken")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env.json"), []byte(`{not json`), 0644))

	_, err := LoadSiteConfig("broken", nil)
	assert.Error(t, err)
}

func TestLoadSiteRegistrySynthesizedFromEnv(t *testing.T) {
	withTempHome(t)

	prev := config.SiteIDs
	config.SiteIDs = "default, acme,"
	t.Cleanup(func() { config.SiteIDs = prev })

	registry, err := LoadSiteRegistry()
	require.NoError(t, err)

	require.Len(t, registry.Sites, 2)
	assert.Contains(t, registry.Sites, "default")
	assert.Contains(t, registry.Sites, "acme")
	assert.Equal(t, "inactive", registry.Sites["default"].Status)
}

func TestRegisterSitePersistsAcrossLoads(t *testing.T) {
	home := withTempHome(t)

	prev := config.SiteIDs
	config.SiteIDs = ""
	t.Cleanup(func() { config.SiteIDs = prev })

	require.NoError(t, RegisterSite("fresh"))

	// The registry file exists and round-trips.
	data, err := os.ReadFile(filepath.Join(home, "config", "sunset", "sites.json"))
	require.NoError(t, err)
	var onDisk SiteRegistry
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Contains(t, onDisk.Sites, "fresh")

	registry, err := LoadSiteRegistry()
	require.NoError(t, err)
	assert.Contains(t, registry.Sites, "fresh")

	// Re-registering is a no-op.
	require.NoError(t, RegisterSite("fresh"))
}

func newTestDetector(multiSite bool, siteIDs ...string) *Detector {
	sites := make(map[string]SiteInfo, len(siteIDs))
	for _, id := range siteIDs {
		sites[id] = SiteInfo{SiteID: id, Domains: []string{"*"}, Status: "active"}
	}
	return &Detector{
		registry:  &SiteRegistry{Sites: sites},
		multiSite: multiSite,
	}
}

func testRequestContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestDetectSiteSingleSiteMode(t *testing.T) {
	d := newTestDetector(false, "default")

	c := testRequestContext(t, "/api/v1/fragments/banner")
	siteID, err := d.DetectSite(c)
	require.NoError(t, err)
	assert.Equal(t, "default", siteID)
}

func TestDetectSiteMultiSiteHeader(t *testing.T) {
	d := newTestDetector(true, "acme")

	c := testRequestContext(t, "/api/v1/fragments/banner")
	c.Request.Header.Set("X-Sunset-Site-ID", "acme")

	siteID, err := d.DetectSite(c)
	require.NoError(t, err)
	assert.Equal(t, "acme", siteID)
}

func TestDetectSiteMultiSiteQueryFallback(t *testing.T) {
	d := newTestDetector(true, "acme")

	// EventSource cannot set headers; SSE passes siteId as a query param.
	c := testRequestContext(t, "/api/v1/auth/sse?siteId=acme&sessionId=sess-1")
	siteID, err := d.DetectSite(c)
	require.NoError(t, err)
	assert.Equal(t, "acme", siteID)
}

func TestDetectSiteMultiSiteMissingHeader(t *testing.T) {
	d := newTestDetector(true, "acme")

	c := testRequestContext(t, "/api/v1/fragments/banner")
	_, err := d.DetectSite(c)
	assert.Error(t, err)
}

func TestDetectSiteUnknownSite(t *testing.T) {
	d := newTestDetector(true, "acme")

	c := testRequestContext(t, "/api/v1/fragments/banner")
	c.Request.Header.Set("X-Sunset-Site-ID", "ghost")
	_, err := d.DetectSite(c)
	assert.Error(t, err)
}

func TestValidateDomain(t *testing.T) {
	d := newTestDetector(false, "default")
	assert.True(t, d.ValidateDomain("default", "anything.example.com"))

	d.registry.Sites["strict"] = SiteInfo{SiteID: "strict", Domains: []string{"legacy.acme.com"}}
	assert.True(t, d.ValidateDomain("strict", "Legacy.Acme.Com"))
	assert.False(t, d.ValidateDomain("strict", "other.acme.com"))
	assert.False(t, d.ValidateDomain("ghost", "legacy.acme.com"))
}
