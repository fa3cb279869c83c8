// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateOperatorToken creates a JWT token for an authenticated operator.
func GenerateOperatorToken(operatorID, email, jwtSecret string) (string, error) {
	claims := jwt.MapClaims{
		"operatorId": operatorID,
		"email":      email,
		"role":       "operator",
		"iat":        time.Now().UTC().Unix(),
		"exp":        time.Now().UTC().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// OperatorIDFromClaims extracts the operator identity from validated claims.
func OperatorIDFromClaims(claims jwt.MapClaims) (string, bool) {
	id, ok := claims["operatorId"].(string)
	return id, ok && id != ""
}
