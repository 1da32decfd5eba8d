package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/utils"
)

// Context keys set by SessionMiddleware.
const (
	ContextUserID  = "userID"
	ContextEmail   = "userEmail"
	ContextIsAdmin = "isAdmin"
)

// extractToken reads the session token from the signed cookie, falling back
// to an Authorization: Bearer header for API clients.
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(utils.TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// SessionMiddleware resolves the acting identity from the token and stores
// it on the request context. Requests without a valid token are rejected.
func SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c)
			if tokenString == "" {
				return apperr.Auth("Not authenticated")
			}

			claims, err := utils.ValidateJWT(tokenString)
			if err != nil {
				return apperr.Auth("Invalid or expired token")
			}

			if claims.UserID != "" {
				userID, err := primitive.ObjectIDFromHex(claims.UserID)
				if err != nil {
					return apperr.Auth("Invalid user ID in token")
				}
				c.Set(ContextUserID, userID)
			}
			c.Set(ContextEmail, strings.ToLower(claims.Email))
			c.Set(ContextIsAdmin, claims.IsAdmin)

			return next(c)
		}
	}
}

// AdminMiddleware gates admin-only routes. It runs after SessionMiddleware.
func AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get(ContextIsAdmin).(bool)
			if !ok || !isAdmin {
				return apperr.Auth("Admin access required")
			}
			return next(c)
		}
	}
}

// UserID returns the acting user's id, or an auth error when the session
// carries no user identity (e.g. an admin token).
func UserID(c echo.Context) (primitive.ObjectID, error) {
	userID, ok := c.Get(ContextUserID).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, apperr.Auth("Not authenticated")
	}
	return userID, nil
}

// Email returns the acting identity's lowercased email.
func Email(c echo.Context) string {
	email, _ := c.Get(ContextEmail).(string)
	return email
}
