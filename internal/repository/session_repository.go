package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository stores the server-side half of session cookies.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{collection: db.Collection("sessions")}
}

// CreateSession inserts a session record.
func (r *SessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create session: %w", translate(err))
	}
	return nil
}

// GetSession fetches a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// RevokeSession marks a session revoked. Unknown ids are ignored.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.DeletedCount, nil
}
