package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// matchedTemplateData and expiredTemplateData feed the two notification
// templates (spec §4.3).
type matchedTemplateData struct {
	Nickname           string
	PartnerNickname    string
	CompatibilityScore float64
	MatchURL           string
}

type expiredTemplateData struct {
	Nickname string
}

const matchedHTMLSource = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>You've been matched!</h1>
  <p>Hi {{.Nickname}},</p>
  <p>You've been matched with <strong>{{.PartnerNickname}}</strong>
     (compatibility {{printf "%.1f" .CompatibilityScore}}%).</p>
  <p><a href="{{.MatchURL}}">View your match</a></p>
</body>
</html>`

const matchedTextSource = `Hi {{.Nickname}},

You've been matched with {{.PartnerNickname}} (compatibility {{printf "%.1f" .CompatibilityScore}}%).
View your match: {{.MatchURL}}
`

const expiredHTMLSource = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Your listing has expired</h1>
  <p>Hi {{.Nickname}},</p>
  <p>We weren't able to find you a match in time. Your listing has been removed from the queue.</p>
</body>
</html>`

const expiredTextSource = `Hi {{.Nickname}},

We weren't able to find you a match in time. Your listing has been removed from the queue.
`

var (
	matchedHTMLTmpl = htmltemplate.Must(htmltemplate.New("matched_html").Parse(matchedHTMLSource))
	matchedTextTmpl = texttemplate.Must(texttemplate.New("matched_text").Parse(matchedTextSource))
	expiredHTMLTmpl = htmltemplate.Must(htmltemplate.New("expired_html").Parse(expiredHTMLSource))
	expiredTextTmpl = texttemplate.Must(texttemplate.New("expired_text").Parse(expiredTextSource))
)

// renderMatched renders both bodies for a "matched" notification. On a
// template execution error (should not happen with fixed templates and
// data), it falls back to a minimal plain-text body rather than failing
// the send outright.
func renderMatched(data matchedTemplateData) (html, text string) {
	var hBuf, tBuf bytes.Buffer
	if err := matchedHTMLTmpl.Execute(&hBuf, data); err != nil {
		return fallbackMatchedText(data), fallbackMatchedText(data)
	}
	if err := matchedTextTmpl.Execute(&tBuf, data); err != nil {
		return hBuf.String(), fallbackMatchedText(data)
	}
	return hBuf.String(), tBuf.String()
}

func renderExpired(data expiredTemplateData) (html, text string) {
	var hBuf, tBuf bytes.Buffer
	if err := expiredHTMLTmpl.Execute(&hBuf, data); err != nil {
		return fallbackExpiredText(data), fallbackExpiredText(data)
	}
	if err := expiredTextTmpl.Execute(&tBuf, data); err != nil {
		return hBuf.String(), fallbackExpiredText(data)
	}
	return hBuf.String(), tBuf.String()
}

func fallbackMatchedText(data matchedTemplateData) string {
	return fmt.Sprintf("Hi %s, you've been matched with %s.", data.Nickname, data.PartnerNickname)
}

func fallbackExpiredText(data expiredTemplateData) string {
	return fmt.Sprintf("Hi %s, your listing has expired.", data.Nickname)
}
