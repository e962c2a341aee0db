package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/domain/user"
	apperrors "teamhub/pkg/errors"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewAuthService(repo, "test-secret", 15), repo
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, token, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.RoleMember, registered.Role)
	assert.NotEqual(t, "correct horse battery", registered.PasswordHash)

	loggedIn, token, err := svc.Login(ctx, "alice", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, loggedIn.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "a@b.c", "long enough password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.Register(ctx, "alice", "a@b.c", "short")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateUserWithRole(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "mod", "mod@example.com", "long enough password", user.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, user.RoleModerator, created.Role)

	_, err = svc.CreateUser(ctx, "eve", "eve@example.com", "long enough password", "superuser")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "whatever password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, token, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, user.RoleMember, claims.Role)

	resolved, err := svc.ResolveUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)
}

func TestParseRejectsGarbageToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	svc, repo := newAuthService(t)
	other := NewAuthService(repo, "other-secret", 15)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
