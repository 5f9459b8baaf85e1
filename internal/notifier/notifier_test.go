package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	to, subject, body string
	err               error
}

func (r *recordingTransport) SendEmail(_ context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return r.err
}

func TestVerificationLink(t *testing.T) {
	link := VerificationLink("https://threads.example", "abc123", "ann+x@x.com")
	require.Equal(t, "https://threads.example/verify-email/abc123/ann+x@x.com", link)
}

func TestSendVerificationEmail(t *testing.T) {
	tr := &recordingTransport{}
	n := NewEmailNotifier(tr, "https://threads.example")

	require.NoError(t, n.SendVerificationEmail(context.Background(), "ann@x.com", "tok"))
	require.Equal(t, "ann@x.com", tr.to)
	require.Equal(t, "Email Verification", tr.subject)
	require.Contains(t, tr.body, "https://threads.example/verify-email/tok/ann@x.com")
}

func TestSendPasswordResetEmail(t *testing.T) {
	tr := &recordingTransport{}
	n := NewEmailNotifier(tr, "https://threads.example")

	require.NoError(t, n.SendPasswordResetEmail(context.Background(), "ann@x.com", "tok"))
	require.Equal(t, "Password Reset Request", tr.subject)
	require.Contains(t, tr.body, "https://threads.example/reset-password/tok")
}

func TestSendPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	n := NewEmailNotifier(&recordingTransport{err: boom}, "https://threads.example")

	err := n.SendVerificationEmail(context.Background(), "ann@x.com", "tok")
	require.ErrorIs(t, err, boom)
}
