package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newServiceFixture(t)
	auth := NewAuthService(f.logger)

	operator, err := auth.Register(&RegisterRequest{
		Email:      "admin@example.com",
		Password:   "hunter2-but-longer",
		Subscribed: true,
	}, f.siteCtx)
	require.NoError(t, err)
	assert.NotEmpty(t, operator.ID)
	assert.NotEqual(t, "hunter2-but-longer", operator.PasswordHash)

	token, err := auth.Login(&LoginRequest{
		Email:    "admin@example.com",
		Password: "hunter2-but-longer",
	}, f.siteCtx)
	require.NoError(t, err)

	operatorID, err := auth.ValidateToken(token, f.siteCtx)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, operatorID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newServiceFixture(t)
	auth := NewAuthService(f.logger)

	_, err := auth.Register(&RegisterRequest{Email: "admin@example.com", Password: "correct-password"}, f.siteCtx)
	require.NoError(t, err)

	_, err = auth.Login(&LoginRequest{Email: "admin@example.com", Password: "wrong-password"}, f.siteCtx)
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginUnknownOperatorIsUniform(t *testing.T) {
	f := newServiceFixture(t)
	auth := NewAuthService(f.logger)

	_, err := auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "whatever"}, f.siteCtx)
	assert.EqualError(t, err, "invalid credentials")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	auth := NewAuthService(f.logger)

	_, err := auth.Register(&RegisterRequest{Email: "admin@example.com", Password: "pw-one-two-three"}, f.siteCtx)
	require.NoError(t, err)

	_, err = auth.Register(&RegisterRequest{Email: "admin@example.com", Password: "pw-four-five-six"}, f.siteCtx)
	assert.EqualError(t, err, "operator already exists")
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	f := newServiceFixture(t)
	auth := NewAuthService(f.logger)

	_, err := auth.Register(&RegisterRequest{Email: "admin@example.com", Password: "pw-one-two-three"}, f.siteCtx)
	require.NoError(t, err)
	token, err := auth.Login(&LoginRequest{Email: "admin@example.com", Password: "pw-one-two-three"}, f.siteCtx)
	require.NoError(t, err)

	f.siteCtx.Config.JWTSecret = "rotated-secret"
	_, err = auth.ValidateToken(token, f.siteCtx)
	assert.Error(t, err)
}
