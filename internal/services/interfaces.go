package services

import (
	"context"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the credential store. *repository.UserRepository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) ([]models.User, error)
	DeleteUnverified(ctx context.Context, ids []primitive.ObjectID) (int64, error)

	ConsumeVerificationToken(ctx context.Context, email, tokenHash string) (*models.User, error)
	SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string) error
	SetFrozen(ctx context.Context, id primitive.ObjectID, frozen bool) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error)
	GetFollowers(ctx context.Context, id primitive.ObjectID) ([]models.User, error)
	GetFollowing(ctx context.Context, id primitive.ObjectID) ([]models.User, error)
}

// FollowGraph applies follow changes to both user documents.
type FollowGraph interface {
	Follow(ctx context.Context, actor, target primitive.ObjectID) error
	Unfollow(ctx context.Context, actor, target primitive.ObjectID) error
}

// Notifier delivers account emails. The raw token goes into the mailed link.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, rawToken string) error
	SendPasswordResetEmail(ctx context.Context, to, rawToken string) error
}
