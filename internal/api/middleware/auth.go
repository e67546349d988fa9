// internal/api/middleware/auth.go
package middleware

import (
	"apiary-api-server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContextUserKey is the gin context key holding the caller's user id.
const ContextUserKey = "user_id"

// Identify parses a bearer token when one is present and attaches the identity
// to the request context. Missing or invalid tokens continue anonymously; the
// service decides whether a mutation needs an identity.
func Identify(secret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" || secret == "" {
			c.Next()
			return
		}

		id, err := auth.ParseJWT(secret, tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("ignoring invalid bearer token")
			c.Next()
			return
		}

		c.Set(ContextUserKey, id.UserID)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
