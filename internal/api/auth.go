package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// authMiddleware validates the bearer token issued by the identity provider
// and stores its subject as the opaque user id. The core never authenticates
// users itself; it only trusts the signed subject claim.
func authMiddleware(secret string, log zerolog.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"code":  "UNAUTHORIZED",
				"error": "bearer token required",
			})
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			log.Debug().Err(err).Msg("Rejected bearer token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"code":  "UNAUTHORIZED",
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}
