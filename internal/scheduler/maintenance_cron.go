package cron

import (
	"context"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single run so a stuck database call cannot pile up runs.
const jobTimeout = 30 * time.Second

// Schedules for the maintenance jobs.
const (
	FollowReconcileSpec = "@every 1m"
	PurgeSpec           = "@hourly"
)

func withTimeout(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			logrus.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	}
}

// StartMaintenanceCronJobs schedules the maintenance jobs and starts the
// scheduler. reconciler may be nil when follows run in transactions. Call
// Stop on the result during shutdown.
func StartMaintenanceCronJobs(reconciler *jobs.FollowReconciler, purger *jobs.Purger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if reconciler != nil {
		if _, err := c.AddFunc(FollowReconcileSpec, withTimeout("follow_reconcile", func(ctx context.Context) error {
			_, err := reconciler.Run(ctx)
			return err
		})); err != nil {
			return nil, err
		}
	}

	// Stale unverified accounts
	if _, err := c.AddFunc(PurgeSpec, withTimeout("purge_unverified", func(ctx context.Context) error {
		_, err := purger.PurgeUnverified(ctx)
		return err
	})); err != nil {
		return nil, err
	}

	// Expired sessions
	if _, err := c.AddFunc(PurgeSpec, withTimeout("purge_sessions", func(ctx context.Context) error {
		_, err := purger.PurgeSessions(ctx)
		return err
	})); err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("entries", len(c.Entries())).Info("Maintenance cron jobs started")
	return c, nil
}
