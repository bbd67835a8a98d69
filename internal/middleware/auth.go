package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/runterra/territory-backend/pkg/response"
)

// userIDKey is the gin context key the auth middleware stores the caller
// id under.
const userIDKey = "userID"

// Auth validates a Bearer token and resolves the caller's user id from
// its subject claim. Token issuance lives outside this service; only the
// identity is consumed here.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			response.Unauthorized(c, "token has no subject")
			c.Abort()
			return
		}

		c.Set(userIDKey, subject)
		c.Next()
	}
}

// UserID returns the authenticated caller id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
