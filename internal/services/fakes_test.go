package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory UserStore and FollowGraph with the same matching
// rules as the Mongo repositories.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemStore() *memStore {
	return &memStore{users: map[primitive.ObjectID]*models.User{}}
}

func clone(u *models.User) *models.User {
	cp := *u
	cp.Followers = append([]primitive.ObjectID{}, u.Followers...)
	cp.Following = append([]primitive.ObjectID{}, u.Following...)
	if u.VerificationTokenHash != nil {
		v := *u.VerificationTokenHash
		cp.VerificationTokenHash = &v
	}
	if u.ResetTokenHash != nil {
		v := *u.ResetTokenHash
		cp.ResetTokenHash = &v
	}
	if u.ResetExpiresAt != nil {
		v := *u.ResetExpiresAt
		cp.ResetExpiresAt = &v
	}
	return &cp
}

func (m *memStore) get(id primitive.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return clone(u)
	}
	return nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	m.users[user.ID] = clone(user)
	return user, nil
}

func (m *memStore) findFirst(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findFirst(func(u *models.User) bool { return u.ID == id })
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findFirst(func(u *models.User) bool { return u.Email == email })
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findFirst(func(u *models.User) bool { return u.Username == username })
}

func (m *memStore) filter(match func(*models.User) bool) []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if match(u) {
			out = append(out, *clone(u))
		}
	}
	return out
}

func (m *memStore) FindByEmailOrUsername(_ context.Context, email, username string) ([]models.User, error) {
	return m.filter(func(u *models.User) bool { return u.Email == email || u.Username == username }), nil
}

func (m *memStore) DeleteUnverified(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := m.users[id]; ok && !u.IsVerified {
			delete(m.users, id)
			n++
			for _, other := range m.users {
				other.Followers = pull(other.Followers, id)
				other.Following = pull(other.Following, id)
			}
		}
	}
	return n, nil
}

func (m *memStore) update(match func(*models.User) bool, apply func(*models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			apply(u)
			u.UpdatedAt = time.Now()
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ConsumeVerificationToken(_ context.Context, email, tokenHash string) (*models.User, error) {
	return m.update(func(u *models.User) bool {
		return u.Email == email && !u.IsVerified && u.VerificationTokenHash != nil && *u.VerificationTokenHash == tokenHash
	}, func(u *models.User) {
		u.IsVerified = true
		u.VerificationTokenHash = nil
	})
}

func (m *memStore) SetVerificationToken(_ context.Context, id primitive.ObjectID, tokenHash string) error {
	_, err := m.update(func(u *models.User) bool { return u.ID == id && !u.IsVerified }, func(u *models.User) {
		u.VerificationTokenHash = &tokenHash
	})
	return err
}

func (m *memStore) SetFrozen(_ context.Context, id primitive.ObjectID, frozen bool) error {
	_, err := m.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) {
		u.IsFrozen = frozen
	})
	return err
}

func (m *memStore) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	_, err := m.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) {
		u.ResetTokenHash = &tokenHash
		u.ResetExpiresAt = &expiresAt
	})
	return err
}

func (m *memStore) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	return m.update(func(u *models.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now)
	}, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.ResetTokenHash = nil
		u.ResetExpiresAt = nil
	})
}

func (m *memStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	for _, u := range m.users {
		if u.ID == id {
			continue
		}
		if (upd.Email != nil && u.Email == *upd.Email) || (upd.Username != nil && u.Username == *upd.Username) {
			m.mu.Unlock()
			return nil, repository.ErrDuplicate
		}
	}
	m.mu.Unlock()

	return m.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) {
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.Username != nil {
			u.Username = *upd.Username
		}
		if upd.PasswordHash != nil {
			u.PasswordHash = *upd.PasswordHash
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.ProfilePic != nil {
			u.ProfilePic = *upd.ProfilePic
		}
	})
}

func (m *memStore) GetAllUsers(_ context.Context) ([]models.User, error) {
	return m.filter(func(*models.User) bool { return true }), nil
}

func (m *memStore) SampleUsers(_ context.Context, exclude primitive.ObjectID, size int) ([]models.User, error) {
	all := m.filter(func(u *models.User) bool { return u.ID != exclude })
	if len(all) > size {
		all = all[:size]
	}
	return all, nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (m *memStore) GetFollowers(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	return m.filter(func(u *models.User) bool { return contains(u.Following, id) }), nil
}

func (m *memStore) GetFollowing(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	return m.filter(func(u *models.User) bool { return contains(u.Followers, id) }), nil
}

func (m *memStore) Follow(_ context.Context, actor, target primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.users[target]; ok && !contains(t.Followers, actor) {
		t.Followers = append(t.Followers, actor)
	}
	if a, ok := m.users[actor]; ok && !contains(a.Following, target) {
		a.Following = append(a.Following, target)
	}
	return nil
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func (m *memStore) Unfollow(_ context.Context, actor, target primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.users[target]; ok {
		t.Followers = pull(t.Followers, actor)
	}
	if a, ok := m.users[actor]; ok {
		a.Following = pull(a.Following, target)
	}
	return nil
}

// fakeMailer records the raw tokens it was asked to deliver.
type fakeMailer struct {
	mu           sync.Mutex
	verification map[string][]string
	reset        map[string][]string
	err          error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{verification: map[string][]string{}, reset: map[string][]string{}}
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, rawToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.verification[to] = append(f.verification[to], rawToken)
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, rawToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reset[to] = append(f.reset[to], rawToken)
	return nil
}

func (f *fakeMailer) lastVerification(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens := f.verification[to]
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

func (f *fakeMailer) lastReset(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens := f.reset[to]
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

var errSMTP = errors.New("smtp: connection refused")
