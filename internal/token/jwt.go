package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const (
	issuer      = "afritokeni-ussd"
	typeGateway = "gateway"
)

// Claims represents JWT claims issued to a USSD gateway.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a token manager signing with secretKey. Tokens live for ttl.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{
		secretKey: secretKey,
		ttl:       ttl,
		now:       time.Now,
	}
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateGatewayToken issues a token whose subject is the gateway id.
func (j *JWT) GenerateGatewayToken(gatewayID string) (string, error) {
	if gatewayID == "" {
		return "", fmt.Errorf("gateway id is empty")
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   gatewayID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeGateway,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign gateway token: %w", err)
	}

	return tokenString, nil
}

// ParseGatewayToken validates a token and returns the gateway id.
func (j *JWT) ParseGatewayToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse gateway token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("gateway token is invalid")
	}
	if claims.TokenType != typeGateway {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("gateway token has no subject")
	}
	return claims.Subject, nil
}
