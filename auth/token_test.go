package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/profile-service/config"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()
	ts := newTestTokens(t, testSecret)

	tok, exp, err := ts.Issue(42, "alice", strPtr("42_me.png"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	require.NotNil(t, claims.ProfilePic)
	assert.Equal(t, "42_me.png", *claims.ProfilePic)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	issuer := newTestTokens(t, testSecret)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, _, err := issuer.Issue(1, "alice", nil)
	require.NoError(t, err)

	_, err = newTestTokens(t, testSecret).Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpiredToken), "got %v", err)
	assert.False(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, _, err := newTestTokens(t, "right-secret-0123456789").Issue(1, "alice", nil)
	require.NoError(t, err)

	_, err = newTestTokens(t, "wrong-secret-0123456789").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	ts := newTestTokens(t, testSecret)

	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := ts.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestVerify_MissingRequiredClaims(t *testing.T) {
	t.Parallel()
	ts := newTestTokens(t, testSecret)
	future := time.Now().Add(time.Hour).Unix()
	now := time.Now().Unix()

	cases := map[string]jwt.MapClaims{
		"no exp":      {"sub": "1", "username": "alice", "iat": now},
		"no iat":      {"sub": "1", "username": "alice", "exp": future},
		"no username": {"sub": "1", "iat": now, "exp": future},
		"bad sub":     {"sub": "alice", "username": "alice", "iat": now, "exp": future},
	}
	for name, claims := range cases {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ts.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	ts := newTestTokens(t, testSecret)
	claims := jwt.MapClaims{
		"sub": "1", "username": "alice",
		"iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix(),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ts.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_IssuedInFuture(t *testing.T) {
	t.Parallel()
	issuer := newTestTokens(t, testSecret)
	issuer.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	tok, _, err := issuer.Issue(1, "alice", nil)
	require.NoError(t, err)

	_, err = newTestTokens(t, testSecret).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Validation(t *testing.T) {
	t.Parallel()
	_, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret, JWTAlgorithm: "RS256", TokenDuration: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenService(config.AuthConfig{JWTSecret: "", JWTAlgorithm: "HS256", TokenDuration: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenService(config.AuthConfig{JWTSecret: testSecret, JWTAlgorithm: "HS384", TokenDuration: 0})
	assert.Error(t, err)

	ts, err := NewTokenService(config.AuthConfig{JWTSecret: testSecret, JWTAlgorithm: "HS384", TokenDuration: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ts.expiry)
}
