package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"message":   "Workplane is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
