package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 存活检查
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
