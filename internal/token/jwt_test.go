package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GatewayToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	token, err := j.GenerateGatewayToken("africastalking")
	require.NoError(t, err)

	got, err := j.ParseGatewayToken(token)
	require.NoError(t, err)
	assert.Equal(t, "africastalking", got)
}

func TestJWT_GenerateGatewayToken_EmptyID(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).GenerateGatewayToken("")
	require.Error(t, err)
}

func TestJWT_ParseGatewayToken_Errors(t *testing.T) {
	issued := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	signer := NewJWT("secret", time.Hour)
	signer.now = func() time.Time { return issued }

	valid, err := signer.GenerateGatewayToken("gw-1")
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "gw-1"},
		TokenType:        "access",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   string
		at    time.Time
	}{
		{name: "garbage", token: "not-a-token", key: "secret", at: issued},
		{name: "wrong key", token: valid, key: "other", at: issued},
		{name: "expired", token: valid, key: "secret", at: issued.Add(2 * time.Hour)},
		{name: "wrong type", token: foreign, key: "secret", at: issued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJWT(tt.key, time.Hour)
			j.now = func() time.Time { return tt.at }

			got, err := j.ParseGatewayToken(tt.token)
			assert.Error(t, err)
			assert.Empty(t, got)
		})
	}
}
