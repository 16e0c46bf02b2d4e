package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bugtracker/internal/apperr"
	"bugtracker/internal/models"
)

type Claims struct {
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() models.Actor { return models.Actor{UserID: c.UserID, Role: c.Role} }

func SignJWT(secret string, userID int64, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID, Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString([]byte(secret))
}

func ParseJWT(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.UserID > 0 {
		return c, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// ActorFromToken reads the actor out of a token without checking the
// signature. Clients use it to learn who they are; the server still verifies.
func ActorFromToken(token string) (models.Actor, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return models.Actor{}, apperr.Validation("malformed token: %v", err)
	}
	if c.UserID <= 0 {
		return models.Actor{}, apperr.Validation("token carries no user id")
	}
	return c.Actor(), nil
}
