package handlers

import (
	"time"

	"github.com/JillVernus/screentimed/internal/config"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthCheck returns a minimal liveness response. No auth required,
// so it deliberately exposes nothing about the timer state.
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	}
}

// HealthCheckDetailed returns uptime and mode. Requires auth.
func HealthCheckDetailed(envCfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).Seconds(),
			"mode":      envCfg.Env,
		})
	}
}
