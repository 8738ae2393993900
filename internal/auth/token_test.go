package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.Issue("user-1", "a@b.c", "teller", PurposeAccess, time.Hour)
	require.NoError(t, err)

	claims, err := m.Verify(token, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "teller", claims.Role)
}

func TestTokenManager_ZeroTTLExpiresImmediately(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.Issue("user-1", "a@b.c", "teller", PurposeAccess, 0)
	require.NoError(t, err)

	// jwt/v5 applies no leeway by default — an exp of "now" is already past.
	time.Sleep(1100 * time.Millisecond)
	_, err = m.Verify(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := NewTokenManager(testSecret)

	_, err := m.Verify("this.is.garbage", PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("other_secret_that_is_long_enough").
		Issue("user-1", "a@b.c", "teller", PurposeAccess, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret).Verify(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_PurposeMismatch(t *testing.T) {
	m := NewTokenManager(testSecret)

	reset, err := m.Issue("user-1", "a@b.c", "teller", PurposePasswordReset, time.Hour)
	require.NoError(t, err)

	// A reset token must not pass as an access token, and vice versa.
	_, err = m.Verify(reset, PurposeAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims, err := m.Verify(reset, PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenManager_ExpiredVsInvalidDistinguishable(t *testing.T) {
	m := NewTokenManager(testSecret)

	expired, err := m.Issue("user-1", "a@b.c", "teller", PurposeAccess, -time.Minute)
	require.NoError(t, err)

	_, expErr := m.Verify(expired, PurposeAccess)
	_, invErr := m.Verify("garbage", PurposeAccess)
	assert.ErrorIs(t, expErr, ErrTokenExpired)
	assert.ErrorIs(t, invErr, ErrTokenInvalid)
	assert.NotErrorIs(t, expErr, ErrTokenInvalid)
}
