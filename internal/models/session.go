package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the server-side record behind a session cookie. Its ID is the
// JWT "jti" claim.
type Session struct {
	ID        string             `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	IssuedAt  time.Time          `bson:"issued_at" json:"issued_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	Revoked   bool               `bson:"revoked" json:"revoked"`
}
