package api

import (
	"github.com/gin-gonic/gin"

	"coltally/internal/config"
	"coltally/internal/store"
)

// Handler API 处理器
type Handler struct {
	store          *store.Store
	maxUploadBytes int64
}

// NewHandler 创建 API 处理器
func NewHandler(store *store.Store, cfg *config.AppConfig) *Handler {
	return &Handler{
		store:          store,
		maxUploadBytes: cfg.MaxUploadBytes(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 存活检查
	router.GET("/health", h.Health)

	// 列值频次分析
	router.POST("/analyze", h.AnalyzeColumns)

	// 最近分析记录
	router.GET("/history", h.ListHistory)
}
