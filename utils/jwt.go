package utils

import (
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/loomline/loomline-backend-go/config"
)

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "token"

type Claims struct {
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.StandardClaims
}

// GenerateJWT signs a session token for the given identity. Admin tokens
// carry no user id: the admin is environment-configured, not a user record.
func GenerateJWT(userID, email string, isAdmin bool) (string, error) {
	claims := &Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(72 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetEnv("JWT_SECRET", "")))
}

func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GetEnv("JWT_SECRET", "")), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
