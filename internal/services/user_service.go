package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Threads_Backend/internal/metrics"
	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	"github.com/Dias221467/Threads_Backend/pkg/token"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// PasswordCost is the bcrypt cost factor for stored passwords.
	PasswordCost = 10
	// ResetTokenTTL bounds how long a mailed reset link stays usable.
	ResetTokenTTL = 10 * time.Minute
	// MinPasswordLength matches the length rule of the user schema.
	MinPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupInput is the payload of POST /signup.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserService encapsulates the account lifecycle: signup, verification,
// login, password reset and freezing.
type UserService struct {
	repo   UserStore
	mailer Notifier

	now  func() time.Time
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, mailer Notifier) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
		now:    time.Now,
		cost:   PasswordCost,
	}
}

// Signup registers a new unverified user and mails the verification link.
// If the email fails to send the user is already stored; logging in again
// resends the link.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	defer func() { metrics.RecordAccountOp("signup", outcome(err)) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if in.Name == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		logrus.Warn("Missing required fields during signup")
		return nil, fmt.Errorf("%w: name, email, username and password are required", ErrValidation)
	}
	if !emailRegex.MatchString(in.Email) {
		logrus.WithField("email", in.Email).Warn("Invalid email format during signup")
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	existing, err := s.repo.FindByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}

	var stale []primitive.ObjectID
	for _, u := range existing {
		if u.IsVerified {
			logrus.WithField("username", in.Username).Warn("Signup collides with a verified user")
			return nil, ErrConflict
		}
		stale = append(stale, u.ID)
	}

	// An unverified account holding the same email or username is replaced
	// by the new signup.
	if len(stale) > 0 {
		n, err := s.repo.DeleteUnverified(ctx, stale)
		if err != nil {
			return nil, fmt.Errorf("failed to replace unverified signup: %w", err)
		}
		logrus.WithField("count", n).Info("Replaced unverified signups")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rawToken := token.Issue()
	tokenHash := token.Hash(rawToken)

	user, err = s.repo.CreateUser(ctx, &models.User{
		Name:                  in.Name,
		Email:                 in.Email,
		Username:              in.Username,
		PasswordHash:          string(hashedPwd),
		IsVerified:            false,
		VerificationTokenHash: &tokenHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		logrus.WithError(err).Error("User signup failed")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, rawToken); err != nil {
		return nil, fmt.Errorf("%w: could not send verification email: %v", ErrDelivery, err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User signed up, verification email sent")
	return user, nil
}

// VerifyEmail marks the account owning email and rawToken as verified. The
// token is cleared in the same write, so it works once.
func (s *UserService) VerifyEmail(ctx context.Context, rawToken, email string) (user *models.User, err error) {
	defer func() { metrics.RecordAccountOp("verify_email", outcome(err)) }()

	if rawToken == "" || email == "" {
		return nil, fmt.Errorf("%w: missing token or email", ErrNotFound)
	}

	user, err = s.repo.ConsumeVerificationToken(ctx, email, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("email", email).Warn("Invalid or expired verification token")
			return nil, fmt.Errorf("%w: invalid or expired token", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Email verified")
	return user, nil
}

// Login checks credentials. Unverified accounts get a fresh verification
// email and ErrNotVerified; frozen accounts are unfrozen.
func (s *UserService) Login(ctx context.Context, username, password string) (user *models.User, err error) {
	defer func() { metrics.RecordAccountOp("login", outcome(err)) }()

	user, err = s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// Compare anyway so a missing user costs the same as a bad password.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		logrus.WithField("username", username).Warn("Login for unknown user")
		return nil, ErrAuth
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("userID", user.ID.Hex()).Warn("Invalid credentials")
		return nil, ErrAuth
	}

	if !user.IsVerified {
		rawToken := token.Issue()
		if err := s.repo.SetVerificationToken(ctx, user.ID, token.Hash(rawToken)); err != nil {
			return nil, fmt.Errorf("failed to rotate verification token: %w", err)
		}
		if err := s.mailer.SendVerificationEmail(ctx, user.Email, rawToken); err != nil {
			return nil, fmt.Errorf("%w: could not send verification email: %v", ErrDelivery, err)
		}
		logrus.WithField("userID", user.ID.Hex()).Warn("Login attempt on unverified account, verification resent")
		return nil, fmt.Errorf("%w: a verification email has been sent, please verify your account", ErrNotVerified)
	}

	if user.IsFrozen {
		if err := s.repo.SetFrozen(ctx, user.ID, false); err != nil {
			return nil, fmt.Errorf("failed to unfreeze account: %w", err)
		}
		user.IsFrozen = false
		logrus.WithField("userID", user.ID.Hex()).Info("Account unfrozen by login")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// RequestPasswordReset stores a digest of a new reset token valid for
// ResetTokenTTL and mails the raw token.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { metrics.RecordAccountOp("request_password_reset", outcome(err)) }()

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user with this email does not exist", ErrNotFound)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	rawToken := token.Issue()
	expiresAt := s.now().Add(ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token.Hash(rawToken), expiresAt); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, rawToken); err != nil {
		return fmt.Errorf("%w: could not send password reset email: %v", ErrDelivery, err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset email sent")
	return nil
}

// ResetPassword replaces the password of the user holding an unexpired
// reset token and clears the token. It does not log the user in.
func (s *UserService) ResetPassword(ctx context.Context, rawToken, newPassword string) (err error) {
	defer func() { metrics.RecordAccountOp("reset_password", outcome(err)) }()

	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if rawToken == "" {
		return ErrToken
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.ConsumeResetToken(ctx, token.Hash(rawToken), s.now(), string(hashedPwd))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.Warn("Invalid or expired reset token")
			return ErrToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset")
	return nil
}

// Freeze marks the caller's own account frozen until the next login.
func (s *UserService) Freeze(ctx context.Context, userID primitive.ObjectID) (err error) {
	defer func() { metrics.RecordAccountOp("freeze", outcome(err)) }()

	if err := s.repo.SetFrozen(ctx, userID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return fmt.Errorf("failed to freeze account: %w", err)
	}

	logrus.WithField("userID", userID.Hex()).Info("Account frozen")
	return nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(token.Issue()), s.cost)
	})
	return s.dummyHash
}
