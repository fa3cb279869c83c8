package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorTokenRoundTrip(t *testing.T) {
	token, err := GenerateOperatorToken("op-1", "admin@example.com", "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)

	operatorID, ok := OperatorIDFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, "op-1", operatorID)
	assert.Equal(t, "admin@example.com", claims["email"])
	assert.Equal(t, "operator", claims["role"])
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateOperatorToken("op-1", "admin@example.com", "test-secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", "test-secret")
	assert.Error(t, err)
}

func TestOperatorIDFromClaimsMissing(t *testing.T) {
	claims, err := ValidateJWT(mustToken(t), "test-secret")
	require.NoError(t, err)

	delete(claims, "operatorId")
	_, ok := OperatorIDFromClaims(claims)
	assert.False(t, ok)
}

func mustToken(t *testing.T) string {
	t.Helper()
	token, err := GenerateOperatorToken("op-1", "admin@example.com", "test-secret")
	require.NoError(t, err)
	return token
}

func TestGenerateULIDUnique(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestGenerateSecureKeyLength(t *testing.T) {
	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)
}
