package store

import (
	"fmt"
	"time"
)

// AnalysisLog 单次分析运行的元信息
type AnalysisLog struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"fileSize"`
	ColumnsSpec  string    `json:"columnsSpec"`
	ColumnCount  int       `json:"columnCount"`  // 请求的列数
	ErrorCount   int       `json:"errorCount"`   // 带 _error 标记的列数
	Status       string    `json:"status"`       // ok / failed
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DurationMS   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateAnalysisLog 写入一条分析日志
func (s *Store) CreateAnalysisLog(log *AnalysisLog) error {
	_, err := s.db.Exec(`
		INSERT INTO analysis_logs
			(id, filename, file_size, columns_spec, column_count, error_count, status, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.Filename, log.FileSize, log.ColumnsSpec, log.ColumnCount, log.ErrorCount, log.Status, log.ErrorMessage, log.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to create analysis log: %w", err)
	}
	return nil
}

// ListAnalysisLogs 按时间倒序返回最近的分析日志
func (s *Store) ListAnalysisLogs(limit int) ([]AnalysisLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, filename, file_size, columns_spec, column_count, error_count, status, error_message, duration_ms, created_at
		FROM analysis_logs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis logs: %w", err)
	}
	defer rows.Close()

	logs := make([]AnalysisLog, 0, limit)
	for rows.Next() {
		var log AnalysisLog
		if err := rows.Scan(
			&log.ID,
			&log.Filename,
			&log.FileSize,
			&log.ColumnsSpec,
			&log.ColumnCount,
			&log.ErrorCount,
			&log.Status,
			&log.ErrorMessage,
			&log.DurationMS,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
