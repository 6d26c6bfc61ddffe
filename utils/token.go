package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// AdminSubject is the user_id carried by tokens issued through the shared
// admin password rather than a user account.
const AdminSubject = "admin"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded content of a session token.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// GenerateToken signs an HS256 token for userID with the given role that
// expires after ttl.
func GenerateToken(secret, userID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := mapClaims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	role, _ := mapClaims["role"].(string)
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}

	return &Claims{UserID: userID, Role: role, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}
