package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"devconnector/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"

	// LegacyTokenHeader is accepted when no Authorization header is sent.
	LegacyTokenHeader = "x-auth-token"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthJWT is the gate placed in front of every protected route.
func AuthJWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			response.Error(c, 401, response.CodeUnauthorized, "No token, authorization denied")
			c.Abort()
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "Token is not valid")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserIDKey)
	return id, id != ""
}

func extractToken(c *gin.Context) (string, bool) {
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		return token, token != ""
	}
	token := strings.TrimSpace(c.GetHeader(LegacyTokenHeader))
	return token, token != ""
}
