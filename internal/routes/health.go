package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"premises-access-control/internal/utils"
)

// Health answers liveness probes. An optional ?ping= value is echoed back.
func Health(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		msg := c.DefaultQuery("ping", "pong")

		c.JSON(http.StatusOK, gin.H{
			"message": msg,
			"version": utils.GetVersion(),
		})
	})
}
