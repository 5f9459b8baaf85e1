package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultFollowGrace is how long a follow intent may stay pending before the
// reconciler assumes its writer died.
const DefaultFollowGrace = time.Minute

// IntentLog is the follow intent log kept by the follow repository.
type IntentLog interface {
	PendingIntents(ctx context.Context, cutoff time.Time) ([]models.FollowIntent, error)
	ResumeIntent(ctx context.Context, intent models.FollowIntent) error
}

// FollowReconciler finishes follow/unfollow writes that were interrupted
// between the two user documents.
type FollowReconciler struct {
	Intents IntentLog
	Grace   time.Duration
	now     func() time.Time
}

// NewFollowReconciler creates a new instance of FollowReconciler.
func NewFollowReconciler(intents IntentLog, grace time.Duration) *FollowReconciler {
	return &FollowReconciler{Intents: intents, Grace: grace, now: time.Now}
}

// Run re-applies every intent pending for longer than the grace period. It
// keeps going past individual failures and reports how many were resumed.
func (f *FollowReconciler) Run(ctx context.Context) (resumed int, err error) {
	defer func() { metrics.RecordJob("follow_reconcile", err == nil) }()

	intents, err := f.Intents.PendingIntents(ctx, f.now().Add(-f.Grace))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending follow intents: %w", err)
	}

	var failed int
	for _, intent := range intents {
		if err := f.Intents.ResumeIntent(ctx, intent); err != nil {
			failed++
			logrus.WithError(err).WithField("intentID", intent.ID.Hex()).Error("Failed to resume follow intent")
			continue
		}
		resumed++
	}

	if resumed > 0 || failed > 0 {
		logrus.WithFields(logrus.Fields{"resumed": resumed, "failed": failed}).Info("Follow reconciliation completed")
	}
	if failed > 0 {
		return resumed, fmt.Errorf("%d follow intents could not be resumed", failed)
	}
	return resumed, nil
}
