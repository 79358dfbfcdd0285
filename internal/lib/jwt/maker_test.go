package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(testSecret, tokenTTL, "restaurant-radio")

	tests := []struct {
		name  string
		uid   string
		email string
	}{
		{name: "user with email", uid: "ZxC9f0aB12", email: "owner@bistro.fr"},
		{name: "anonymous user without email", uid: "anon-42", email: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.uid, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.uid, claims.UID())
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, "restaurant-radio", claims.Issuer)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 2*time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, 2*time.Second)
		})
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims CustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute, "restaurant-radio")

	validToken, err := maker.GenerateToken("u1", "a@b.c")
	require.NoError(t, err)

	expired, err := NewJWTMaker(testSecret, -time.Hour, "restaurant-radio").GenerateToken("u1", "")
	require.NoError(t, err)

	wrongSecret, err := NewJWTMaker("wrong_secret_key", 15*time.Minute, "restaurant-radio").GenerateToken("u1", "")
	require.NoError(t, err)

	wrongIssuer, err := NewJWTMaker(testSecret, 15*time.Minute, "someone-else").GenerateToken("u1", "")
	require.NoError(t, err)

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	noSubject := sign(t, jwt.SigningMethodHS256, []byte(testSecret), CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "restaurant-radio", ExpiresAt: future},
	})
	noExpiry := sign(t, jwt.SigningMethodHS256, []byte(testSecret), CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "restaurant-radio"},
	})
	wrongAlg := sign(t, jwt.SigningMethodHS512, []byte(testSecret), CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "restaurant-radio", ExpiresAt: future},
	})

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expired},
		{name: "wrong secret key", token: wrongSecret},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "missing subject", token: noSubject},
		{name: "missing expiry", token: noExpiry},
		{name: "unexpected signing method", token: wrongAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_IssuerOptional(t *testing.T) {
	token, err := NewJWTMaker(testSecret, time.Minute, "any-issuer").GenerateToken("u1", "")
	require.NoError(t, err)

	claims, err := NewJWTMaker(testSecret, time.Minute, "").ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID())
}

func TestJWTMaker_ExpiredMessage(t *testing.T) {
	maker := NewJWTMaker(testSecret, -time.Minute, "")
	token, err := maker.GenerateToken("u1", "")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}
