package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the users collection. Secret fields never
// leave the server in JSON.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name         string               `bson:"name" json:"name"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password_hash" json:"-"`
	ProfilePic   string               `bson:"profile_pic" json:"profilePic"`
	Bio          string               `bson:"bio" json:"bio"`
	Followers    []primitive.ObjectID `bson:"followers" json:"followers"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`
	IsFrozen     bool                 `bson:"is_frozen" json:"isFrozen"`
	IsVerified   bool                 `bson:"is_verified" json:"isVerified"`

	// Only SHA-256 digests of the mailed tokens are stored.
	VerificationTokenHash *string    `bson:"verification_token_hash,omitempty" json:"-"`
	ResetTokenHash        *string    `bson:"reset_token_hash,omitempty" json:"-"`
	ResetExpiresAt        *time.Time `bson:"reset_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// Profile is the public view returned by the auth endpoints.
type Profile struct {
	ID         primitive.ObjectID `json:"_id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Username   string             `json:"username"`
	Bio        string             `json:"bio"`
	ProfilePic string             `json:"profilePic"`
	IsVerified bool               `json:"isVerified"`
}

// ToProfile strips everything but the public fields.
func (u *User) ToProfile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Username:   u.Username,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		IsVerified: u.IsVerified,
	}
}

// ProfileUpdate carries the optional fields of a profile edit. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Username     *string
	PasswordHash *string
	Bio          *string
	ProfilePic   *string
}
