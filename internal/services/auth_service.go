package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campus-chat/internal/store"
	"campus-chat/models"
)

var ErrUserExists = errors.New("username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService is the identity collaborator: it maps credentials to a user
// identifier and issues/validates the tokens the chat core trusts. The
// distribution core never re-verifies identity itself.
type AuthService struct {
	users  store.UserStore
	secret []byte
}

func NewAuthService(users store.UserStore, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret)}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateToken(user.ID, user.Username, 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Username:     user.Username,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// refresh token itself is rotated so a leaked one ages out.
func (s *AuthService) Refresh(refreshToken string) (*models.AuthResponse, error) {
	userID, username, err := s.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.GenerateToken(userID, username, 72*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateToken(userID, username, 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		UserID:       userID,
		Username:     username,
	}, nil
}

func (s *AuthService) GenerateToken(userID, username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken checks the token signature and expiry and returns the
// authenticated user ID and username.
func (s *AuthService) ValidateToken(tokenString string) (userID, username string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", errors.New("invalid token claims")
	}
	username, _ = claims["username"].(string)
	return userID, username, nil
}
