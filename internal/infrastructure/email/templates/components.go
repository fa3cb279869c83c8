// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

type buttonTemplateData struct {
	BackgroundColor string
	URL             string
	TextColor       string
	Text            string
}

// Compiled templates for email components
var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="btn btn-primary" style="border-collapse: separate; mso-table-lspace: 0pt; mso-table-rspace: 0pt; box-sizing: border-box; width: 100%; min-width: 100%;" width="100%">
      <tbody>
        <tr>
          <td align="left" style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; padding-bottom: 16px;" valign="top">
            <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; mso-table-lspace: 0pt; mso-table-rspace: 0pt; width: auto;">
              <tbody>
                <tr>
                  <td style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; border-radius: 4px; text-align: center; background-color: {{.BackgroundColor}};" valign="top" align="center" bgcolor="{{.BackgroundColor}}">
                    <a href="{{.URL}}" target="_blank" style="border: solid 2px {{.BackgroundColor}}; border-radius: 4px; box-sizing: border-box; cursor: pointer; display: inline-block; font-size: 16px; font-weight: bold; margin: 0; padding: 12px 24px; text-decoration: none; background-color: {{.BackgroundColor}}; border-color: {{.BackgroundColor}}; color: {{.TextColor}};">{{.Text}}</a>
                  </td>
                </tr>
              </tbody>
            </table>
          </td>
        </tr>
      </tbody>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	headingTemplate = template.Must(template.New("emailHeading").Parse(`<h2 style="font-family: Helvetica, sans-serif; font-size: 22px; font-weight: bold; margin: 0; margin-bottom: 16px;">{{.}}</h2>`))
)

// GetEmailButton renders a call-to-action button
func GetEmailButton(props ButtonProps) string {
	backgroundColor := props.BackgroundColor
	if backgroundColor == "" {
		backgroundColor = "#0867ec"
	}
	textColor := props.TextColor
	if textColor == "" {
		textColor = "#ffffff"
	}

	var buf bytes.Buffer
	err := buttonTemplate.Execute(&buf, buttonTemplateData{
		BackgroundColor: backgroundColor,
		URL:             props.URL,
		TextColor:       textColor,
		Text:            props.Text,
	})
	if err != nil {
		log.Printf("Error executing email button template: %v", err)
		return ""
	}
	return buf.String()
}

// GetEmailParagraph renders an escaped paragraph of text
func GetEmailParagraph(text string) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, text); err != nil {
		log.Printf("Error executing email paragraph template: %v", err)
		return ""
	}
	return buf.String()
}

// GetEmailHeading renders an escaped heading
func GetEmailHeading(text string) string {
	var buf bytes.Buffer
	if err := headingTemplate.Execute(&buf, text); err != nil {
		log.Printf("Error executing email heading template: %v", err)
		return ""
	}
	return buf.String()
}

// NoticeActivatedEmailProps carries the fields for the activation reminder email.
type NoticeActivatedEmailProps struct {
	NoticeTitle  string
	SunsetDate   string
	SiteID       string
	DashboardURL string
}

// GetNoticeActivatedEmailContent composes the body of the email sent to
// subscribed operators when a sunset notice goes live.
func GetNoticeActivatedEmailContent(props NoticeActivatedEmailProps) string {
	var buf bytes.Buffer
	buf.WriteString(GetEmailHeading("A sunset notice is now live"))
	buf.WriteString(GetEmailParagraph("The notice \"" + props.NoticeTitle + "\" is now being shown to visitors of the legacy interface on site " + props.SiteID + "."))
	if props.SunsetDate != "" {
		buf.WriteString(GetEmailParagraph("Scheduled sunset date: " + props.SunsetDate + "."))
	}
	if props.DashboardURL != "" {
		buf.WriteString(GetEmailButton(ButtonProps{
			Text: "Open dashboard",
			URL:  props.DashboardURL,
		}))
	}
	buf.WriteString(GetEmailParagraph("You can track how many visitors have dismissed the notice from the activity dashboard."))
	return buf.String()
}
