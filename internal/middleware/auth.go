package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/JillVernus/screentimed/internal/config"
	"github.com/gin-gonic/gin"
)

// secureCompare performs a constant-time comparison of two strings
// to prevent timing attacks.
func secureCompare(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// getAccessKey extracts the caller's key from the Authorization bearer
// header or the X-Access-Key header.
func getAccessKey(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return c.GetHeader("X-Access-Key")
}

// AccessKeyMiddleware gates the command API behind the single configured
// access key. Unauthenticated callers get a fixed rejection and no state
// mutation occurs.
func AccessKeyMiddleware(envCfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == envCfg.HealthCheckPath {
			c.Next()
			return
		}

		if !secureCompare(getAccessKey(c), envCfg.AccessKey) {
			log.Printf("⚠️ Unauthorized request to %s from %s", path, c.ClientIP())
			c.JSON(401, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
