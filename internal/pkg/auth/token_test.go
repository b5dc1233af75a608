package auth_test

import (
	"testing"
	"time"

	"deliverytracker/internal/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() auth.Config {
	return auth.Config{Secret: "s3cret", Issuer: "deliverytracker", TTL: time.Hour}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()

	token, err := auth.MintAccessToken(cfg, time.Now(), userID, "admin")
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "deliverytracker", claims.Issuer)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), userID, "courier")
		require.NoError(t, err)

		_, err = auth.ParseAccessToken(cfg, token)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.MintAccessToken(cfg, time.Now(), userID, "courier")
		require.NoError(t, err)

		other := cfg
		other.Secret = "other"
		_, err = auth.ParseAccessToken(other, token)
		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := auth.MintAccessToken(cfg, time.Now(), userID, "courier")
		require.NoError(t, err)

		other := cfg
		other.Issuer = "someone-else"
		_, err = auth.ParseAccessToken(other, token)
		require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ParseAccessToken(cfg, "not-a-token")
		require.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := auth.ParseAccessToken(auth.Config{}, "x")
		require.ErrorIs(t, err, auth.ErrSecretRequired)
	})
}

func TestMintAccessToken_Validation(t *testing.T) {
	_, err := auth.MintAccessToken(auth.Config{TTL: time.Hour}, time.Now(), uuid.New(), "admin")
	require.ErrorIs(t, err, auth.ErrSecretRequired)

	_, err = auth.MintAccessToken(auth.Config{Secret: "x"}, time.Now(), uuid.New(), "admin")
	require.Error(t, err)

	_, err = auth.MintAccessToken(testConfig(), time.Now(), uuid.New(), " ")
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			token, ok := auth.BearerToken(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}
