package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmwangi/soko-api/internal/models"
)

// Identity is the verified payload carried by a bearer token.
type Identity struct {
	UserID int64
	Email  string
	Role   models.Role
}

// GenerateToken signs an HS256 token for the given user. The secret comes
// from config; this package holds no state of its own.
func GenerateToken(secret []byte, user *models.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and verifies a token string, returning the identity it
// carries. Expired, malformed, or wrongly-signed tokens all come back as a
// plain error; callers treat every failure the same way as a missing token.
func ValidateToken(secret []byte, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	// JSON numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("invalid subject claim")
	}

	ident := &Identity{UserID: int64(sub)}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		ident.Role = models.Role(role)
	}

	return ident, nil
}
