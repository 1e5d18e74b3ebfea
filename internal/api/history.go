package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListHistory 查询最近的分析记录
// GET /api/history?limit=20
func (h *Handler) ListHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []any{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	logs, err := h.store.ListAnalysisLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询分析记录失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": logs})
}
