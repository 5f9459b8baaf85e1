package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers HTML email over SMTP using PLAIN auth and STARTTLS when
// the server offers it.
type Sender struct {
	Host     string
	Port     string
	From     string
	Password string
	Timeout  time.Duration
}

// NewSender creates a Sender. A zero timeout means 10 seconds.
func NewSender(host, port, from, password string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{Host: host, Port: port, From: from, Password: password, Timeout: timeout}
}

// SendEmail sends an HTML email to a single recipient.
func (s *Sender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	address := net.JoinHostPort(s.Host, s.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}

	if s.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.From, s.Password, s.Host)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM rejected: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO rejected: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA rejected: %w", err)
	}
	if _, err := w.Write(BuildMessage(s.From, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return c.Quit()
}

// BuildMessage renders the RFC 5322 message for an HTML body.
func BuildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
