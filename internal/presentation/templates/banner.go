// Package templates renders the HTML fragments served to legacy interfaces.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
)

// BannerProps carries everything needed to render the sunset banner and
// its one-time popup for a single visitor.
type BannerProps struct {
	Notice    *notice.Notice
	PopupOpen bool
}

type bannerTemplateData struct {
	NoticeID        string
	Title           string
	Body            string
	SunsetDate      string
	LearnMoreURL    string
	NewInterfaceURL string
	ImageSrc        string
	PopupOpen       bool
}

// The popup posts OPENED when the "what changed" control re-opens it and
// DISMISSED when the visitor continues to the legacy interface. Both verbs
// go through the same state endpoint the session was issued against.
var bannerTemplate = template.Must(template.New("sunsetBanner").Parse(`<div id="sunset-banner" class="sunset-banner" data-notice-id="{{.NoticeID}}" role="region" aria-label="Deprecation notice">
  <span class="sunset-banner-title">{{.Title}}</span>
  {{- if .SunsetDate}}
  <span class="sunset-banner-date">This interface will be retired on {{.SunsetDate}}.</span>
  {{- end}}
  {{- if .NewInterfaceURL}}
  <a class="sunset-banner-link" href="{{.NewInterfaceURL}}">Try the new interface</a>
  {{- end}}
  {{- if .LearnMoreURL}}
  <a class="sunset-banner-link" href="{{.LearnMoreURL}}" target="_blank" rel="noopener">Learn more</a>
  {{- end}}
  <button type="button" class="sunset-banner-reopen"
    hx-post="/api/v1/state" hx-target="#sunset-banner" hx-swap="outerHTML"
    hx-vals='{"noticeId": "{{.NoticeID}}", "verb": "OPENED"}'>What changed?</button>
</div>
<div id="sunset-popup" class="sunset-popup{{if not .PopupOpen}} hidden{{end}}" data-notice-id="{{.NoticeID}}"
  role="dialog" aria-modal="true" aria-labelledby="sunset-popup-title"{{if not .PopupOpen}} hidden{{end}}>
  <div class="sunset-popup-panel">
    {{- if .ImageSrc}}
    <img class="sunset-popup-image" src="{{.ImageSrc}}" alt="">
    {{- end}}
    <h2 id="sunset-popup-title">{{.Title}}</h2>
    <div class="sunset-popup-body">{{.Body}}</div>
    {{- if .SunsetDate}}
    <p class="sunset-popup-date">Retirement date: {{.SunsetDate}}</p>
    {{- end}}
    {{- if .LearnMoreURL}}
    <p><a href="{{.LearnMoreURL}}" target="_blank" rel="noopener">Read the full announcement</a></p>
    {{- end}}
    <button type="button" class="sunset-popup-continue"
      hx-post="/api/v1/state" hx-target="#sunset-banner" hx-swap="outerHTML"
      hx-vals='{"noticeId": "{{.NoticeID}}", "verb": "DISMISSED"}'>Continue to legacy interface</button>
  </div>
</div>`))

// RenderBanner renders the banner fragment plus the popup in its current
// visibility state. A nil notice renders to the empty string so callers can
// return an empty fragment when no notice is live.
func RenderBanner(props BannerProps) (string, error) {
	if props.Notice == nil {
		return "", nil
	}

	data := bannerTemplateData{
		NoticeID:  props.Notice.ID,
		Title:     props.Notice.Title,
		Body:      props.Notice.Body,
		PopupOpen: props.PopupOpen,
	}
	data.SunsetDate = FormatSunsetDate(props.Notice.SunsetDate)
	data.LearnMoreURL = props.Notice.LearnMoreURL
	data.NewInterfaceURL = props.Notice.NewInterfaceURL
	if props.Notice.ImageSrc != nil {
		data.ImageSrc = *props.Notice.ImageSrc
	}

	var buf bytes.Buffer
	if err := bannerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render banner fragment: %w", err)
	}

	return buf.String(), nil
}

// FormatSunsetDate renders the display form of the retirement date. A zero
// date renders to the empty string, which the template treats as "no date".
func FormatSunsetDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
