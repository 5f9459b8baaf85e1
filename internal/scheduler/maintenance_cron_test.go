package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/jobs"
	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noIntents struct{}

func (noIntents) PendingIntents(context.Context, time.Time) ([]models.FollowIntent, error) {
	return nil, nil
}

func (noIntents) ResumeIntent(context.Context, models.FollowIntent) error { return nil }

type noRecords struct{}

func (noRecords) DeleteStaleUnverified(context.Context, time.Time) (int64, error) { return 0, nil }
func (noRecords) DeleteExpiredSessions(context.Context, time.Time) (int64, error) { return 0, nil }

func TestStartMaintenanceCronJobs(t *testing.T) {
	purger := jobs.NewPurger(noRecords{}, noRecords{}, time.Hour)

	c, err := StartMaintenanceCronJobs(jobs.NewFollowReconciler(noIntents{}, time.Minute), purger)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 3)

	c2, err := StartMaintenanceCronJobs(nil, purger)
	require.NoError(t, err)
	defer c2.Stop()
	assert.Len(t, c2.Entries(), 2, "no reconciler when follows are transactional")
}

func TestWithTimeoutBoundsContext(t *testing.T) {
	var deadline time.Time
	var ok bool
	withTimeout("test", func(ctx context.Context) error {
		deadline, ok = ctx.Deadline()
		return errors.New("logged, not returned")
	})()

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(jobTimeout), deadline, time.Second)
}
