package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
)

// DefaultLoginPINSubject is the subject of login PIN emails sent without one.
const DefaultLoginPINSubject = "Your AMP Calibration Login Code"

const loginPINFrom = "AMP Calibration <noreply@ampcalibration.com>"

func NewMailgunEmailer(mg mailgun.Mailgun) *MailgunEmailer {
	return &MailgunEmailer{mg: mg}
}

// MailgunEmailer is responsible for mailgun API interactions.
type MailgunEmailer struct {
	mg mailgun.Mailgun
}

// SendLoginPIN sends the login PIN token to the "to" email specified. If
// subject is empty DefaultLoginPINSubject is used.
func (e MailgunEmailer) SendLoginPIN(ctx context.Context, to, token, subject string) error {
	if strings.TrimSpace(subject) == "" {
		subject = DefaultLoginPINSubject
	}

	html, err := RenderLoginPIN(token)
	if err != nil {
		return err
	}

	msg := e.mg.NewMessage(loginPINFrom, subject, loginPINText(token), to)
	msg.SetHtml(html)

	return e.send(ctx, msg)
}

// --- private ---

func (e MailgunEmailer) send(ctx context.Context, msg *mailgun.Message) error {
	if _, _, err := e.mg.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email; error: %w", err)
	}
	return nil
}

// --- helper ---

var loginPIN = template.Must(template.New("login_pin").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #339c5e; margin-bottom: 10px;">AMP Calibration Login</h2>
  <p>Enter this PIN code to log in to your account:</p>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <h1 style="font-size: 36px; letter-spacing: 12px; margin: 0; color: #339c5e; font-weight: bold;">{{ .Token }}</h1>
  </div>
  <p style="color: #666; font-size: 14px;">This code expires in 5 minutes.</p>
  <p style="color: #666; font-size: 14px; margin-top: 20px;">If you didn't request this code, you can safely ignore this email.</p>
</div>
`))

// RenderLoginPIN renders the HTML body of a login PIN email.
func RenderLoginPIN(token string) (string, error) {
	var buf bytes.Buffer
	if err := loginPIN.Execute(&buf, struct{ Token string }{Token: token}); err != nil {
		return "", fmt.Errorf("render login pin; error: %w", err)
	}
	return buf.String(), nil
}

func loginPINText(token string) string {
	return fmt.Sprintf(
		"Enter this PIN code to log in to your account: %s\n\nThis code expires in 5 minutes.\n",
		token,
	)
}
