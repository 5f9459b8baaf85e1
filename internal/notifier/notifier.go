package notifier

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Transport is anything that can hand an HTML email to a mail server.
type Transport interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// EmailNotifier renders account emails and passes them to the transport.
type EmailNotifier struct {
	transport Transport
	baseURL   string
}

// NewEmailNotifier creates a notifier that builds links against baseURL.
func NewEmailNotifier(transport Transport, baseURL string) *EmailNotifier {
	return &EmailNotifier{transport: transport, baseURL: baseURL}
}

// VerificationLink is the URL mailed after signup and on unverified login.
func VerificationLink(baseURL, rawToken, email string) string {
	return fmt.Sprintf("%s/verify-email/%s/%s", baseURL, url.PathEscape(rawToken), url.PathEscape(email))
}

// PasswordResetLink is the URL mailed on a reset request.
func PasswordResetLink(baseURL, rawToken string) string {
	return fmt.Sprintf("%s/reset-password/%s", baseURL, url.PathEscape(rawToken))
}

// SendVerificationEmail mails the verification link for rawToken.
func (n *EmailNotifier) SendVerificationEmail(ctx context.Context, to, rawToken string) error {
	link := VerificationLink(n.baseURL, rawToken, to)
	body := fmt.Sprintf(`<p>Please verify your email by clicking the link below:</p>
<a href="%s">Verify Email</a>`, html.EscapeString(link))

	return n.send(ctx, "verification", to, "Email Verification", body)
}

// SendPasswordResetEmail mails the reset link for rawToken.
func (n *EmailNotifier) SendPasswordResetEmail(ctx context.Context, to, rawToken string) error {
	link := PasswordResetLink(n.baseURL, rawToken)
	body := fmt.Sprintf(`<p>You requested a password reset.</p>
<p>Click <a href="%s">here</a> to reset your password. The link expires in 10 minutes.</p>`, html.EscapeString(link))

	return n.send(ctx, "password_reset", to, "Password Reset Request", body)
}

func (n *EmailNotifier) send(ctx context.Context, kind, to, subject, body string) error {
	if err := n.transport.SendEmail(ctx, to, subject, body); err != nil {
		metrics.RecordEmail(kind, false)
		logrus.WithFields(logrus.Fields{
			"kind":  kind,
			"email": to,
			"error": err,
		}).Error("Failed to send email")
		return err
	}

	metrics.RecordEmail(kind, true)
	logrus.WithFields(logrus.Fields{"kind": kind, "email": to}).Info("Email sent")
	return nil
}
