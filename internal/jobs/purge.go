package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/sirupsen/logrus"
)

// UnverifiedStore deletes accounts that never confirmed their email.
type UnverifiedStore interface {
	DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionStore deletes session records past their expiry.
type SessionStore interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Purger removes dead records: stale unverified signups and expired sessions.
type Purger struct {
	Users         UnverifiedStore
	Sessions      SessionStore
	UnverifiedTTL time.Duration
	now           func() time.Time
}

// NewPurger creates a new instance of Purger. sessions may be nil.
func NewPurger(users UnverifiedStore, sessions SessionStore, unverifiedTTL time.Duration) *Purger {
	return &Purger{Users: users, Sessions: sessions, UnverifiedTTL: unverifiedTTL, now: time.Now}
}

// PurgeUnverified deletes unverified accounts older than UnverifiedTTL, which
// frees their email and username.
func (p *Purger) PurgeUnverified(ctx context.Context) (n int64, err error) {
	defer func() { metrics.RecordJob("purge_unverified", err == nil) }()

	n, err = p.Users.DeleteStaleUnverified(ctx, p.now().Add(-p.UnverifiedTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to purge unverified users: %w", err)
	}
	if n > 0 {
		logrus.WithField("count", n).Info("Purged stale unverified users")
	}
	return n, nil
}

// PurgeSessions deletes expired session records.
func (p *Purger) PurgeSessions(ctx context.Context) (n int64, err error) {
	if p.Sessions == nil {
		return 0, nil
	}
	defer func() { metrics.RecordJob("purge_sessions", err == nil) }()

	n, err = p.Sessions.DeleteExpiredSessions(ctx, p.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	if n > 0 {
		logrus.WithField("count", n).Info("Purged expired sessions")
	}
	return n, nil
}
