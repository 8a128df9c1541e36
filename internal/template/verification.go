// Package template renders the email verification result page served when
// a user follows the link from their inbox.
package template

import (
	"bytes"
	"html/template"
)

type verificationPageData struct {
	Success     bool
	Title       string
	Message     string
	IconColor   string
	IconBg      string
	RedirectURL string
}

var verificationPage = template.Must(template.New("verification_page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Email Verification - Task Tracker</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; min-height: 100vh; display: flex; align-items: center; justify-content: center; background: #f9fafb; }
    .card { background: white; border-radius: 12px; padding: 40px; max-width: 440px; width: 90%; text-align: center; box-shadow: 0 4px 6px -1px rgba(0,0,0,0.1); }
    .icon { width: 72px; height: 72px; border-radius: 50%; background: {{.IconBg}}; display: flex; align-items: center; justify-content: center; margin: 0 auto 20px; }
    h1 { font-size: 22px; color: #111827; margin-bottom: 8px; }
    p { color: #6b7280; font-size: 15px; line-height: 1.5; }
    .redirect { margin-top: 16px; font-size: 13px; color: #9ca3af; }
  </style>
</head>
<body>
  <div class="card">
    <div class="icon">
      {{if .Success}}<svg width="48" height="48" fill="none" viewBox="0 0 24 24" stroke="{{.IconColor}}"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M5 13l4 4L19 7"/></svg>{{else}}<svg width="48" height="48" fill="none" viewBox="0 0 24 24" stroke="{{.IconColor}}"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M6 18L18 6M6 6l12 12"/></svg>{{end}}
    </div>
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
    {{if .Success}}<p class="redirect">Redirecting to login in <span id="countdown">3</span> seconds...</p>{{end}}
  </div>
  {{if .Success}}<script>
    let seconds = 3;
    const el = document.getElementById('countdown');
    const interval = setInterval(() => {
      seconds--;
      if (el) el.textContent = seconds;
      if (seconds <= 0) {
        clearInterval(interval);
        window.location.href = '{{.RedirectURL}}';
      }
    }, 1000);
  </script>{{end}}
</body>
</html>
`))

// VerificationPage renders the success or failure page shown after a
// verification link is followed.
func VerificationPage(success bool, message, redirectURL string) string {
	data := verificationPageData{
		Success:     success,
		Message:     message,
		RedirectURL: redirectURL,
	}
	if success {
		data.Title = "Email Verified!"
		data.IconColor = "#22c55e"
		data.IconBg = "#f0fdf4"
	} else {
		data.Title = "Verification Failed"
		data.IconColor = "#ef4444"
		data.IconBg = "#fef2f2"
	}

	var buf bytes.Buffer
	if err := verificationPage.Execute(&buf, data); err != nil {
		return data.Title
	}
	return buf.String()
}
