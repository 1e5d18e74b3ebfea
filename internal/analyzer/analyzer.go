package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"coltally/internal/colref"
)

// ErrFileRead 文件级解析失败，整个请求终止
var ErrFileRead = errors.New("failed to read excel")

// Analyze 对上传的 Excel 按列统计值频次
// data 为完整文件字节，columnsSpec 形如 "F, G, H"
// 第 1 行视为表头无条件跳过；仅读取请求列，单元格去首尾空白后计数，空值丢弃
func Analyze(data []byte, columnsSpec string) (*Result, error) {
	tokens := colref.ParseSpec(columnsSpec)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no usable sheet", ErrFileRead)
	}

	counts, width, err := countColumns(file, sheets[0], wantedIndexes(tokens))
	if err != nil {
		return nil, err
	}

	result := &Result{Entries: make([]Entry, 0, len(tokens))}
	for _, tok := range tokens {
		if tok.Err != nil {
			result.upsert(Entry{Label: tok.Raw, ErrMsg: tok.Err.Error()})
			continue
		}
		if tok.Index >= width {
			result.upsert(Entry{Label: tok.Raw, ErrMsg: fmt.Sprintf("column %s not in file", tok.Raw)})
			continue
		}
		result.upsert(Entry{Label: tok.Raw, Freq: counts[tok.Index]})
	}

	return result, nil
}

// wantedIndexes 收集所有合法记号的列索引（重复记号共享同一份计数）
func wantedIndexes(tokens []colref.Token) map[int]struct{} {
	wanted := make(map[int]struct{})
	for _, tok := range tokens {
		if tok.Err == nil {
			wanted[tok.Index] = struct{}{}
		}
	}
	return wanted
}

// countColumns 流式扫描工作表，仅对请求列做频次统计
// 返回各列的计数表与实际最大列数（用于越界判断）
func countColumns(file *excelize.File, sheet string, wanted map[int]struct{}) (map[int]map[string]int, int, error) {
	rows, err := file.Rows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	defer rows.Close()

	counts := make(map[int]map[string]int, len(wanted))
	for idx := range wanted {
		counts[idx] = make(map[string]int)
	}

	width := 0
	rowNum := 0
	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFileRead, err)
		}
		if len(row) > width {
			width = len(row)
		}

		rowNum++
		if rowNum == 1 {
			// 表头行，无论内容如何都不参与统计
			continue
		}

		for idx := range wanted {
			if idx >= len(row) {
				continue
			}
			value, ok := normalizeCell(row[idx])
			if !ok {
				continue
			}
			counts[idx][value]++
		}
	}

	return counts, width, nil
}

// normalizeCell 单元格规范化：去首尾空白，空值返回 false
// 大小写与内部空白原样保留，计数按精确字符串相等
func normalizeCell(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}
