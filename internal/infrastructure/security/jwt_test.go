package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestOwnerTokenRoundTrip(t *testing.T) {
	token, err := GenerateOwnerToken("owner-1", testSecret, time.Hour)
	require.NoError(t, err)

	owner, err := ValidateOwnerToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", owner)
}

func TestOwnerTokenRejections(t *testing.T) {
	token, err := GenerateOwnerToken("owner-1", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateOwnerToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateOwnerToken("owner-1", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateOwnerToken(expired, testSecret)
	assert.Error(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ValidateOwnerToken(noSub, testSecret)
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = ValidateOwnerToken("not-a-jwt", testSecret)
	assert.Error(t, err)
}

func TestGenerators(t *testing.T) {
	id := GenerateULID()
	assert.Len(t, id, 26)
	assert.True(t, IsULID(id))
	assert.False(t, IsULID("nope"))

	key, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
