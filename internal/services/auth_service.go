package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"teamhub/internal/domain/user"
	"teamhub/internal/repository"
	apperrors "teamhub/pkg/errors"
)

// AuthService is the identity boundary: it verifies credentials, issues
// access tokens, and maps tokens back to users for both HTTP requests and
// websocket upgrades.
type AuthService struct {
	users     repository.UserRepository
	secret    []byte
	expiryMin int
}

// Claims carried in an access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(users repository.UserRepository, secret string, expiryMin int) *AuthService {
	if expiryMin <= 0 {
		expiryMin = 15
	}
	return &AuthService{
		users:     users,
		secret:    []byte(secret),
		expiryMin: expiryMin,
	}
}

// Register creates a member account and returns it with a fresh access
// token. Usernames and emails are unique.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (user.User, string, error) {
	u, err := s.CreateUser(ctx, username, email, password, user.RoleMember)
	if err != nil {
		return user.User{}, "", err
	}

	token, err := s.IssueAccessToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// CreateUser creates an account with an explicit role. No token is issued;
// admin-provisioned accounts log in on their own.
func (s *AuthService) CreateUser(ctx context.Context, username, email, password, role string) (user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || len(password) < 8 {
		return user.User{}, apperrors.ErrInvalidInput
	}
	switch role {
	case user.RoleAdmin, user.RoleModerator, user.RoleMember:
	default:
		return user.User{}, apperrors.ErrInvalidInput
	}

	hash, err := HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       user.StatusOnline,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Login verifies a username/password pair and returns the user with a fresh
// access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (user.User, string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return user.User{}, "", apperrors.ErrUnauthorized
		}
		return user.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", apperrors.ErrUnauthorized
	}

	token, err := s.IssueAccessToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// IssueAccessToken signs an access token for the user.
func (s *AuthService) IssueAccessToken(u user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expiryMin) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccessToken validates a token string and returns its claims.
func (s *AuthService) ParseAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// ResolveUser loads the user a set of claims refers to, verifying the
// identity still exists.
func (s *AuthService) ResolveUser(ctx context.Context, claims *Claims) (user.User, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return user.User{}, apperrors.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return user.User{}, apperrors.ErrUnauthorized
		}
		return user.User{}, err
	}
	return u, nil
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
