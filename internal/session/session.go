// Package session mints and checks the signed cookie that proves a user has
// authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	jwtutil "github.com/Dias221467/Threads_Backend/pkg/jwt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CookieName is the cookie carrying the session token.
const CookieName = "jwt"

// ErrInvalidSession is returned for tokens that are malformed, expired or revoked.
var ErrInvalidSession = errors.New("invalid session")

// Store is the session registry. A nil Store makes sessions purely stateless.
type Store interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string) error
}

// Issuer signs session tokens and attaches them to responses.
type Issuer struct {
	secret string
	ttl    time.Duration
	secure bool
	store  Store
	now    func() time.Time
}

// NewIssuer creates an Issuer. store may be nil.
func NewIssuer(secret string, ttl time.Duration, secure bool, store Store) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, secure: secure, store: store, now: time.Now}
}

// Issue creates a session for userID and sets it as a cookie on w.
func (i *Issuer) Issue(ctx context.Context, w http.ResponseWriter, userID primitive.ObjectID) (string, error) {
	now := i.now()
	id := uuid.NewString()

	if i.store != nil {
		s := &models.Session{
			ID:        id,
			UserID:    userID,
			IssuedAt:  now,
			ExpiresAt: now.Add(i.ttl),
		}
		if err := i.store.CreateSession(ctx, s); err != nil {
			return "", err
		}
	}

	signed, err := jwtutil.GenerateToken(userID.Hex(), id, i.secret, now, i.ttl)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteStrictMode,
	})

	logrus.WithFields(logrus.Fields{"userID": userID.Hex(), "sessionID": id}).Info("Session issued")
	return signed, nil
}

// Authenticate validates a token and, with a registry, its server-side record.
func (i *Issuer) Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ValidateToken(token, i.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if i.store == nil {
		return claims, nil
	}

	s, err := i.store.GetSession(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown session", ErrInvalidSession)
		}
		return nil, err
	}
	if s.Revoked || !i.now().Before(s.ExpiresAt) {
		return nil, fmt.Errorf("%w: session revoked or expired", ErrInvalidSession)
	}
	return claims, nil
}

// Revoke invalidates the session (when a registry exists) and expires the cookie.
func (i *Issuer) Revoke(ctx context.Context, w http.ResponseWriter, claims *jwtutil.Claims) error {
	Clear(w, i.secure)

	if i.store == nil || claims == nil {
		return nil
	}
	return i.store.RevokeSession(ctx, claims.SessionID())
}

// Clear expires the session cookie on the client.
func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
