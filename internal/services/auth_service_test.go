package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-chat/internal/store"
	"campus-chat/models"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (s *memUsers) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.CreatedAt = time.Now()
	s.users[user.Username] = *user
	return nil
}

func (s *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) ListUsers(context.Context) ([]models.User, error) { return nil, nil }

func newAuth() *AuthService {
	return NewAuthService(&memUsers{users: make(map[string]models.User)}, "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()

	user, err := auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "whatever12"})
	assert.ErrorIs(t, err, ErrUserExists)

	res, err := auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.UserID)
	assert.NotEmpty(t, res.Token)

	_, err = auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newAuth()

	token, err := auth.GenerateToken("u-123", "alice", time.Hour)
	require.NoError(t, err)

	userID, username, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", userID)
	assert.Equal(t, "alice", username)
}

func TestRefresh(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, models.RegisterRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	login, err := auth.Login(ctx, models.LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)

	res, err := auth.Refresh(login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.UserID, res.UserID)
	assert.Equal(t, "alice", res.Username)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)

	userID, _, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, login.UserID, userID)
}

func TestRefresh_RejectsBadToken(t *testing.T) {
	auth := newAuth()

	_, err := auth.Refresh("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	expired, err := auth.GenerateToken("u-123", "alice", -time.Minute)
	require.NoError(t, err)
	_, err = auth.Refresh(expired)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Rejects(t *testing.T) {
	auth := newAuth()

	_, _, err := auth.ValidateToken("not-a-token")
	assert.Error(t, err)

	expired, err := auth.GenerateToken("u-123", "alice", -time.Minute)
	require.NoError(t, err)
	_, _, err = auth.ValidateToken(expired)
	assert.Error(t, err)

	other := NewAuthService(&memUsers{users: make(map[string]models.User)}, "different-secret")
	foreign, err := other.GenerateToken("u-123", "alice", time.Hour)
	require.NoError(t, err)
	_, _, err = auth.ValidateToken(foreign)
	assert.Error(t, err, "tokens signed with another secret are rejected")
}
