package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const operatorRole = "operator"

var ErrInvalidOpsToken = errors.New("invalid operator token")

// OpsAuth mints and verifies the HS256 tokens that guard the operator feed.
type OpsAuth struct {
	Secret []byte
}

func NewOpsAuth(secret string) *OpsAuth {
	return &OpsAuth{Secret: []byte(secret)}
}

// GenerateToken creates an operator token valid for ttl.
func (a *OpsAuth) GenerateToken(operator string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  operator,
		"role": operatorRole,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// Verify checks signature, expiry and role, and returns the operator name.
func (a *OpsAuth) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidOpsToken
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidOpsToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidOpsToken
	}

	if role, _ := claims["role"].(string); role != operatorRole {
		return "", ErrInvalidOpsToken
	}

	operator, _ := claims["sub"].(string)
	if operator == "" {
		return "", ErrInvalidOpsToken
	}
	return operator, nil
}
