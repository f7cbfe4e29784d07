package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken(id, "alice", "alice@example.com", "MEMBER", []string{"x"}, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, []string{"x"}, claims.Privileges)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenIsNotASessionToken(t *testing.T) {
	id := uuid.New()
	token, err := GenerateResetToken(id, "hash")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenBoundToPasswordHash(t *testing.T) {
	id := uuid.New()
	token, err := GenerateResetToken(id, "hash-1")
	require.NoError(t, err)

	assert.NoError(t, ValidateResetToken(token, id, "hash-1"))
	assert.ErrorIs(t, ValidateResetToken(token, id, "hash-2"), ErrInvalidToken)
	assert.ErrorIs(t, ValidateResetToken(token, uuid.New(), "hash-1"), ErrInvalidToken)
}
