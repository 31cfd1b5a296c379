// Package auth verifies one-time passcodes and issues the access tokens
// that gate write operations.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated account and its role.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64       `json:"aid"`
	Role      models.Role `json:"role"`
}

func GenerateToken(accountID int64, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: accountID,
		Role:      role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the signature and expiry. Expired tokens yield
// common.ErrTokenExpired; any other failure yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
