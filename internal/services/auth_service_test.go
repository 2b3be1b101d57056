// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	utils.SetJWTSecret("test-secret")

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Jordan",
		Email:    "jordan@example.com",
		Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	claims, err := utils.ValidateJWT(resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)

	login, err := svc.Login(&LoginRequest{Email: "jordan@example.com", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&RegisterRequest{
		Name: "First", Email: "dup@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Name: "Second", Email: "dup@example.com", Password: "An0ther$ecret",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&RegisterRequest{
		Name: "Weak", Email: "weak@example.com", Password: "password",
	})
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "jordan@example.com", Password: "WrongPass1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Sup3r$ecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokens(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	utils.SetJWTSecret("test-secret")

	resp, err := svc.Register(&RegisterRequest{
		Name: "Jordan", Email: "jordan@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	_, err = svc.RefreshTokens("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
