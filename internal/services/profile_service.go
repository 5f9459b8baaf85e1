package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	suggestionSample = 10
	suggestionLimit  = 4
)

// UpdateProfileInput is the payload of PUT /update/{id}. Empty fields are
// left unchanged.
type UpdateProfileInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

// ProfileService serves the read side of user profiles and profile edits.
type ProfileService struct {
	repo UserStore
	cost int
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo UserStore) *ProfileService {
	return &ProfileService{repo: repo, cost: PasswordCost}
}

// GetProfile looks a user up by ObjectID hex or, failing that, by username.
func (s *ProfileService) GetProfile(ctx context.Context, query string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if id, perr := primitive.ObjectIDFromHex(query); perr == nil {
		user, err = s.repo.GetUserByID(ctx, id)
	} else {
		user, err = s.repo.GetUserByUsername(ctx, query)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user.
func (s *ProfileService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Suggested returns a few random users the caller does not follow yet.
func (s *ProfileService) Suggested(ctx context.Context, userID primitive.ObjectID) ([]models.User, error) {
	me, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	sample, err := s.repo.SampleUsers(ctx, userID, suggestionSample)
	if err != nil {
		return nil, err
	}

	suggested := make([]models.User, 0, suggestionLimit)
	for _, u := range sample {
		if me.IsFollowing(u.ID) {
			continue
		}
		suggested = append(suggested, u)
		if len(suggested) == suggestionLimit {
			break
		}
	}
	return suggested, nil
}

// Followers returns the users following id.
func (s *ProfileService) Followers(ctx context.Context, id string) ([]models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrValidation)
	}
	return s.repo.GetFollowers(ctx, objID)
}

// Following returns the users id follows.
func (s *ProfileService) Following(ctx context.Context, id string) ([]models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrValidation)
	}
	return s.repo.GetFollowing(ctx, objID)
}

// UpdateProfile edits the caller's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID primitive.ObjectID, id string, in UpdateProfileInput) (*models.User, error) {
	if id != callerID.Hex() {
		logrus.WithFields(logrus.Fields{
			"requestedUserID": id,
			"loggedInUserID":  callerID.Hex(),
		}).Warn("Forbidden update attempt")
		return nil, fmt.Errorf("%w: you cannot update other user's profile", ErrForbidden)
	}

	var upd models.ProfileUpdate
	if v := strings.TrimSpace(in.Name); v != "" {
		upd.Name = &v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		if !emailRegex.MatchString(v) {
			return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
		}
		upd.Email = &v
	}
	if v := strings.TrimSpace(in.Username); v != "" {
		upd.Username = &v
	}
	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		upd.PasswordHash = &h
	}
	if in.Bio != "" {
		upd.Bio = &in.Bio
	}
	if in.ProfilePic != "" {
		upd.ProfilePic = &in.ProfilePic
	}

	user, err := s.repo.UpdateProfile(ctx, callerID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: email or username already taken", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
