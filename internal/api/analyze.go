package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coltally/internal/analyzer"
	"coltally/internal/store"
)

// AnalyzeColumns 上传 Excel 并统计指定列的值频次
// POST /api/analyze
// multipart form: file = Excel 文件, columns = 列规格串（如 "F, G, H"）
// 文件级解析失败返回 400，列级错误以 {"_error": ...} 嵌入 200 结果
func (h *Handler) AnalyzeColumns(c *gin.Context) {
	start := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请上传文件"})
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("文件过大，最大支持%dMB", h.maxUploadBytes/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 .xlsx 格式"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败"})
		return
	}

	columnsSpec := c.PostForm("columns")

	result, err := analyzer.Analyze(content, columnsSpec)
	if err != nil {
		h.recordRun(header.Filename, header.Size, columnsSpec, nil, err, start)
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件解析失败: " + err.Error()})
		return
	}

	h.recordRun(header.Filename, header.Size, columnsSpec, result, nil, start)
	c.JSON(http.StatusOK, result)
}

// recordRun 记录分析运行元信息（不落盘上传数据；失败仅打日志，不影响响应）
func (h *Handler) recordRun(filename string, size int64, columnsSpec string, result *analyzer.Result, runErr error, start time.Time) {
	if h.store == nil {
		return
	}

	entry := &store.AnalysisLog{
		ID:          uuid.New().String(),
		Filename:    filename,
		FileSize:    size,
		ColumnsSpec: columnsSpec,
		Status:      "ok",
		DurationMS:  time.Since(start).Milliseconds(),
	}

	if runErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = runErr.Error()
	} else if result != nil {
		entry.ColumnCount = len(result.Entries)
		for _, e := range result.Entries {
			if e.ErrMsg != "" {
				entry.ErrorCount++
			}
		}
	}

	if err := h.store.CreateAnalysisLog(entry); err != nil {
		log.Printf("记录分析日志失败: %v", err)
	}
}
