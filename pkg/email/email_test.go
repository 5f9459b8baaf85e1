package email

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("noreply@threads.example", "ann@x.com", "Email Verification", "<p>hi</p>"))

	require.True(t, strings.HasPrefix(msg, "From: noreply@threads.example\r\n"))
	require.Contains(t, msg, "To: ann@x.com\r\n")
	require.Contains(t, msg, "Subject: Email Verification\r\n")
	require.Contains(t, msg, "Content-Type: text/html")
	require.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>\r\n"))
}

func TestSendEmailConnectionFailure(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	s := NewSender(host, port, "noreply@threads.example", "", time.Second)
	err = s.SendEmail(context.Background(), "ann@x.com", "subject", "body")
	require.Error(t, err)
}
