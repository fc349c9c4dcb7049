package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"foodgram/backend/internal/logging"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (uint, error)
}

// UserLookup reports whether the account behind a token still exists.
type UserLookup interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

var errNoCredentials = errors.New("no valid credentials")

// AuthMiddleware rejects requests without a valid token. Tokens of deleted
// accounts are invalid. users may be nil to skip the account check.
func AuthMiddleware(parser TokenParser, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, parser, users)
		if errors.Is(err, errNoCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided or are invalid"})
			return
		}
		if err != nil {
			logging.FromContext(c).Error().Err(err).Msg("failed to resolve token owner")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(parser TokenParser, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, parser, users)
		switch {
		case err == nil:
			c.Set(UserIDKey, userID)
		case !errors.Is(err, errNoCredentials):
			logging.FromContext(c).Error().Err(err).Msg("failed to resolve token owner")
		}
		c.Next()
	}
}

// UserID returns the id set by one of the middlewares, or 0 for anonymous
// requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func authenticate(c *gin.Context, parser TokenParser, users UserLookup) (uint, error) {
	token, ok := extractToken(c.GetHeader("Authorization"))
	if !ok {
		return 0, errNoCredentials
	}
	userID, err := parser.ParseToken(token)
	if err != nil {
		return 0, errNoCredentials
	}
	if users == nil {
		return userID, nil
	}

	exists, err := users.UserExists(c.Request.Context(), userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errNoCredentials
	}
	return userID, nil
}

// extractToken accepts both "Token <jwt>" and "Bearer <jwt>".
func extractToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return token, true
	}
	return "", false
}
