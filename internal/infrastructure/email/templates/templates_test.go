package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeActivatedEmailContent(t *testing.T) {
	content := GetNoticeActivatedEmailContent(NoticeActivatedEmailProps{
		NoticeTitle:  "The legacy interface is going away",
		SunsetDate:   "December 31, 2026",
		SiteID:       "default",
		DashboardURL: "https://example.com/dashboard",
	})

	assert.Contains(t, content, "A sunset notice is now live")
	assert.Contains(t, content, "The legacy interface is going away")
	assert.Contains(t, content, "December 31, 2026")
	assert.Contains(t, content, `href="https://example.com/dashboard"`)
}

func TestNoticeActivatedEmailContentOmitsOptionalParts(t *testing.T) {
	content := GetNoticeActivatedEmailContent(NoticeActivatedEmailProps{
		NoticeTitle: "Quiet notice",
		SiteID:      "default",
	})

	assert.NotContains(t, content, "Scheduled sunset date")
	assert.NotContains(t, content, "Open dashboard")
}

func TestEmailLayoutDefaults(t *testing.T) {
	html := GetEmailLayout(EmailLayoutProps{Content: "<p>hello</p>"})

	require.Contains(t, html, "<p>hello</p>")
	assert.Contains(t, html, "Legacy interface sunset notices")
	assert.Contains(t, html, "At Risk Media")
	assert.Contains(t, html, "Unsubscribe")
}
