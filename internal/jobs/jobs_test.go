package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeIntents struct {
	pending []models.FollowIntent
	cutoff  time.Time
	failID  primitive.ObjectID
	resumed []primitive.ObjectID
}

func (f *fakeIntents) PendingIntents(_ context.Context, cutoff time.Time) ([]models.FollowIntent, error) {
	f.cutoff = cutoff
	var out []models.FollowIntent
	for _, in := range f.pending {
		if in.CreatedAt.Before(cutoff) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeIntents) ResumeIntent(_ context.Context, intent models.FollowIntent) error {
	if intent.ID == f.failID {
		return errors.New("write conflict")
	}
	f.resumed = append(f.resumed, intent.ID)
	return nil
}

func intent(age time.Duration) models.FollowIntent {
	return models.FollowIntent{
		ID:        primitive.NewObjectID(),
		ActorID:   primitive.NewObjectID(),
		TargetID:  primitive.NewObjectID(),
		Action:    models.FollowActionFollow,
		Status:    models.IntentPending,
		CreatedAt: fixedNow.Add(-age),
	}
}

func TestFollowReconcilerResumesOnlyStaleIntents(t *testing.T) {
	old := intent(5 * time.Minute)
	fresh := intent(5 * time.Second)
	log := &fakeIntents{pending: []models.FollowIntent{old, fresh}}

	r := NewFollowReconciler(log, DefaultFollowGrace)
	r.now = func() time.Time { return fixedNow }

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []primitive.ObjectID{old.ID}, log.resumed)
	assert.Equal(t, fixedNow.Add(-DefaultFollowGrace), log.cutoff)
}

func TestFollowReconcilerContinuesPastFailures(t *testing.T) {
	a, b := intent(time.Hour), intent(time.Hour)
	log := &fakeIntents{pending: []models.FollowIntent{a, b}, failID: a.ID}

	r := NewFollowReconciler(log, DefaultFollowGrace)
	r.now = func() time.Time { return fixedNow }

	n, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []primitive.ObjectID{b.ID}, log.resumed)
}

type fakePurgeStore struct {
	cutoff time.Time
	now    time.Time
	err    error
}

func (f *fakePurgeStore) DeleteStaleUnverified(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func (f *fakePurgeStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.now = now
	return 2, f.err
}

func TestPurger(t *testing.T) {
	store := &fakePurgeStore{}
	p := NewPurger(store, store, 24*time.Hour)
	p.now = func() time.Time { return fixedNow }

	n, err := p.PurgeUnverified(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), store.cutoff)

	n, err = p.PurgeSessions(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, fixedNow, store.now)

	store.err = errors.New("mongo down")
	_, err = p.PurgeUnverified(context.Background())
	require.Error(t, err)
}

func TestPurgerWithoutSessionRegistry(t *testing.T) {
	p := NewPurger(&fakePurgeStore{}, nil, time.Hour)
	n, err := p.PurgeSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
