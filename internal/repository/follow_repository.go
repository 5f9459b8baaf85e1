package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IntentSuperseded marks a pending intent that a newer one for the same pair replaced.
const IntentSuperseded = "superseded"

// FollowRepository keeps the followers/following arrays of two users in step.
//
// With transactions enabled both writes commit together (requires a replica
// set). Otherwise each change is written to follow_intents first, so a crash
// between the two writes leaves a pending intent for the reconciler.
type FollowRepository struct {
	users           *mongo.Collection
	intents         *mongo.Collection
	useTransactions bool
}

// NewFollowRepository creates a new FollowRepository.
func NewFollowRepository(db *mongo.Database, useTransactions bool) *FollowRepository {
	return &FollowRepository{
		users:           db.Collection("users"),
		intents:         db.Collection("follow_intents"),
		useTransactions: useTransactions,
	}
}

// Follow makes actor follow target.
func (r *FollowRepository) Follow(ctx context.Context, actor, target primitive.ObjectID) error {
	return r.change(ctx, actor, target, models.FollowActionFollow)
}

// Unfollow makes actor stop following target.
func (r *FollowRepository) Unfollow(ctx context.Context, actor, target primitive.ObjectID) error {
	return r.change(ctx, actor, target, models.FollowActionUnfollow)
}

func (r *FollowRepository) change(ctx context.Context, actor, target primitive.ObjectID, action string) error {
	if r.useTransactions {
		return r.changeInTransaction(ctx, actor, target, action)
	}

	intent := &models.FollowIntent{
		ActorID:   actor,
		TargetID:  target,
		Action:    action,
		Status:    models.IntentPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	res, err := r.intents.InsertOne(ctx, intent)
	if err != nil {
		return fmt.Errorf("failed to record follow intent: %w", err)
	}
	intent.ID, _ = res.InsertedID.(primitive.ObjectID)

	if err := r.apply(ctx, actor, target, action); err != nil {
		logrus.WithFields(logrus.Fields{
			"intentID": intent.ID.Hex(),
			"error":    err,
		}).Error("Follow change left pending")
		return err
	}

	return r.markIntent(ctx, intent.ID, models.IntentApplied)
}

func (r *FollowRepository) changeInTransaction(ctx context.Context, actor, target primitive.ObjectID, action string) error {
	session, err := r.users.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.apply(sc, actor, target, action)
	})
	if err != nil {
		return fmt.Errorf("follow transaction failed: %w", err)
	}
	return nil
}

// apply performs both writes. $addToSet and $pull make replays harmless.
func (r *FollowRepository) apply(ctx context.Context, actor, target primitive.ObjectID, action string) error {
	op := "$addToSet"
	if action == models.FollowActionUnfollow {
		op = "$pull"
	}
	now := time.Now()

	if _, err := r.users.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{op: bson.M{"followers": actor}, "$set": bson.M{"updated_at": now}},
	); err != nil {
		return fmt.Errorf("failed to update followers of %s: %w", target.Hex(), err)
	}

	if _, err := r.users.UpdateOne(ctx,
		bson.M{"_id": actor},
		bson.M{op: bson.M{"following": target}, "$set": bson.M{"updated_at": now}},
	); err != nil {
		return fmt.Errorf("failed to update following of %s: %w", actor.Hex(), err)
	}

	return nil
}

func (r *FollowRepository) markIntent(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.intents.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark follow intent %s: %w", id.Hex(), err)
	}
	return nil
}

// PendingIntents returns intents still pending that were created before cutoff, oldest first.
func (r *FollowRepository) PendingIntents(ctx context.Context, cutoff time.Time) ([]models.FollowIntent, error) {
	filter := bson.M{"status": models.IntentPending, "created_at": bson.M{"$lt": cutoff}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.intents.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending intents: %w", err)
	}
	defer cursor.Close(ctx)

	intents := []models.FollowIntent{}
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, fmt.Errorf("failed to decode intents: %w", err)
	}
	return intents, nil
}

// ResumeIntent finishes a pending intent. If a newer intent exists for the
// same pair, that one decides the final state and this one is superseded.
func (r *FollowRepository) ResumeIntent(ctx context.Context, intent models.FollowIntent) error {
	newer, err := r.intents.CountDocuments(ctx, bson.M{
		"actor_id":   intent.ActorID,
		"target_id":  intent.TargetID,
		"created_at": bson.M{"$gt": intent.CreatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to check newer intents: %w", err)
	}
	if newer > 0 {
		return r.markIntent(ctx, intent.ID, IntentSuperseded)
	}

	if err := r.apply(ctx, intent.ActorID, intent.TargetID, intent.Action); err != nil {
		return err
	}
	return r.markIntent(ctx, intent.ID, models.IntentApplied)
}
