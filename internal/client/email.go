// SMTP client for outbound mail.
//
// Env (see internal/config):
//   - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS
//   - SMTP_FROM: From header, e.g. "Task Tracker <noreply@tasktracker.dev>"
//   - APP_BASE_URL: base for the verification link

package client

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/mail"
	"net/smtp"
	"net/url"
	"time"

	"github.com/task-tracker/backend/internal/config"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #333;">Verify Your Email</h2>
  <p>Thank you for registering! Please click the button below to verify your email address:</p>
  <a href="{{.VerificationURL}}"
     style="display: inline-block; padding: 12px 24px; background-color: #4F46E5; color: white;
            text-decoration: none; border-radius: 6px; margin: 16px 0; font-weight: bold;">
    Verify Email
  </a>
  <p style="color: #666; font-size: 14px;">
    Or copy and paste this link into your browser:<br/>
    <a href="{{.VerificationURL}}">{{.VerificationURL}}</a>
  </p>
  <p style="color: #999; font-size: 12px;">This link expires in {{.TTL}}.</p>
</div>
`))

type EmailClient struct {
	cfg     config.SMTPConfig
	baseURL string
	linkTTL time.Duration
}

func NewEmailClient(cfg config.SMTPConfig, baseURL string, linkTTL time.Duration) *EmailClient {
	return &EmailClient{cfg: cfg, baseURL: baseURL, linkTTL: linkTTL}
}

// SendVerificationEmail mails the raw verification token as a link. The
// raw token exists only in this email; storage keeps its hash.
func (c *EmailClient) SendVerificationEmail(ctx context.Context, to, rawToken string) error {
	verificationURL := fmt.Sprintf("%s/auth/verify-email?token=%s", c.baseURL, url.QueryEscape(rawToken))

	var body bytes.Buffer
	err := verificationTmpl.Execute(&body, struct {
		VerificationURL string
		TTL             time.Duration
	}{verificationURL, c.linkTTL})
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	return c.send(ctx, to, "Verify your email - Task Tracker", body.String())
}

func (c *EmailClient) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", c.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	// The envelope sender must be a bare address even when the From
	// header carries a display name.
	from := c.cfg.From
	if parsed, err := mail.ParseAddress(from); err == nil {
		from = parsed.Address
	}

	addr := net.JoinHostPort(c.cfg.Host, c.cfg.Port)
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)

	if err := smtp.SendMail(addr, auth, from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
