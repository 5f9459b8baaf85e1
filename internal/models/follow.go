package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FollowActionFollow   = "follow"
	FollowActionUnfollow = "unfollow"

	IntentPending = "pending"
	IntentApplied = "applied"
)

// FollowIntent records a two-document follow change before it is applied so
// an interrupted change can be finished later.
type FollowIntent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	TargetID  primitive.ObjectID `bson:"target_id" json:"target_id"`
	Action    string             `bson:"action" json:"action"` // "follow" or "unfollow"
	Status    string             `bson:"status" json:"status"` // "pending" or "applied"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
