package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is how long a session token stays accepted after issue.
const TokenValidity = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	AdminID string `json:"adminId"`
}

// GenerateToken mints a signed session token embedding the admin's ID.
func GenerateToken(adminID string, secret []byte) (string, error) {
	return generateToken(adminID, secret, TokenValidity)
}

func generateToken(adminID string, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AdminID: adminID,
	})
	return token.SignedString(secret)
}

// AdminIDFromToken verifies signature and expiry and returns the embedded
// admin ID. Any verification failure comes back as an error.
func AdminIDFromToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.AdminID == "" {
		return "", ErrInvalidToken
	}
	return claims.AdminID, nil
}
