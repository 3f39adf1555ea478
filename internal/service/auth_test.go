package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pmemoapp/pmemo-server/internal/errors"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
		FullName: "Alice",
	})
	require.NoError(t, err)

	// Registration logs the user in immediately.
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.False(t, resp.ExpiresAt.IsZero())

	// The password hash never leaves the service.
	assert.Empty(t, resp.User.PasswordHash)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestRegister_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "another password",
		FullName: "Imposter",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "alice@example.com")

	resp, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	// The issued token verifies and carries the user ID.
	claims, err := env.auth.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com")

	_, wrongPassword := env.auth.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong password!",
	})
	require.Error(t, wrongPassword)

	_, unknownEmail := env.auth.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, unknownEmail)

	// An attacker cannot tell a bad password from an unknown account.
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	var domainErr *domainerrors.Error
	require.ErrorAs(t, wrongPassword, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
	require.ErrorAs(t, unknownEmail, &domainErr)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "alice@example.com")

	user, err := env.auth.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestGetUser_Gone(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.GetUser(context.Background(), "user-gone")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.VerifyAccessToken("v4.local.garbage")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)
}
