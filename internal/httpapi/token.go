package httpapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tgrelay/internal/common"
)

// sessionClaims binds a signed dashboard cookie to a server-side session id.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSessionToken issues the JWT carried by the session cookie. The token
// itself holds no session data, only the sid the store is keyed by.
func signSessionToken(secret []byte, sid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseSessionToken validates the cookie token and extracts the sid.
func parseSessionToken(secret []byte, tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.SID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.SID, nil
}
