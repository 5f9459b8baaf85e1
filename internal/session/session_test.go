package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memStore struct {
	sessions map[string]*models.Session
}

func newMemStore() *memStore { return &memStore{sessions: map[string]*models.Session{}} }

func (m *memStore) CreateSession(_ context.Context, s *models.Session) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) RevokeSession(_ context.Context, id string) error {
	if s, ok := m.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

func TestIssueSetsCookie(t *testing.T) {
	store := newMemStore()
	issuer := NewIssuer("secret", time.Hour, true, store)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	token, err := issuer.Issue(context.Background(), rec, userID)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, token, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, 3600, cookies[0].MaxAge)
	require.Len(t, store.sessions, 1)

	claims, err := issuer.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID.Hex(), claims.UserID)
}

func TestRevokeInvalidatesSession(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, false, newMemStore())

	token, err := issuer.Issue(context.Background(), httptest.NewRecorder(), primitive.NewObjectID())
	require.NoError(t, err)
	claims, err := issuer.Authenticate(context.Background(), token)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Revoke(context.Background(), rec, claims))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)

	_, err = issuer.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticateUnknownSession(t *testing.T) {
	signer := NewIssuer("secret", time.Hour, false, nil)
	token, err := signer.Issue(context.Background(), httptest.NewRecorder(), primitive.NewObjectID())
	require.NoError(t, err)

	// Same secret, but this issuer keeps a registry that never saw the token.
	checker := NewIssuer("secret", time.Hour, false, newMemStore())
	_, err = checker.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestStatelessSessions(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, false, nil)
	token, err := issuer.Issue(context.Background(), httptest.NewRecorder(), primitive.NewObjectID())
	require.NoError(t, err)

	claims, err := issuer.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, issuer.Revoke(context.Background(), httptest.NewRecorder(), claims))

	// Without a registry revocation only clears the cookie.
	_, err = issuer.Authenticate(context.Background(), token)
	require.NoError(t, err)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, false, nil)
	_, err := issuer.Authenticate(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidSession)
}
