package colref

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// InvalidLabelError 非法列标错误（包含 A-Z 以外的字符）
type InvalidLabelError struct {
	Label string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid column letter: %s", e.Label)
}

// LabelOverflowError 列标超出 int 可表示的索引范围
type LabelOverflowError struct {
	Label string
}

func (e *LabelOverflowError) Error() string {
	return fmt.Sprintf("column letter out of range: %s", e.Label)
}

// maxTotalBeforeShift 累加前的上界：再进一位（total*26+26）仍不溢出
const maxTotalBeforeShift = (math.MaxInt - 26) / 26

// Token 列规格串中的一个列标记号
// Raw 保留调用方原始写法（作为结果的 key），Index/Err 为解析结果
type Token struct {
	Raw   string
	Index int
	Err   error
}

var reSeparators = regexp.MustCompile(`[,;\s]+`)

// ParseSpec 解析列规格串
// 输入形如 "F, G,H ;I"，按逗号/分号/空白切分，丢弃空记号，保留输入顺序
func ParseSpec(raw string) []Token {
	parts := reSeparators.Split(strings.TrimSpace(raw), -1)

	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		idx, err := Index(p)
		tokens = append(tokens, Token{
			Raw:   p,
			Index: idx,
			Err:   err,
		})
	}
	return tokens
}

// Index 将 Excel 列标转换为 0 基列索引
// A -> 0, B -> 1, ..., Z -> 25, AA -> 26, ...
// 列标视为 26 进制数（数位 1-26，无零位），长度不限
func Index(label string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "" {
		return -1, &InvalidLabelError{Label: label}
	}

	total := 0
	for _, ch := range upper {
		if ch < 'A' || ch > 'Z' {
			return -1, &InvalidLabelError{Label: label}
		}
		if total > maxTotalBeforeShift {
			return -1, &LabelOverflowError{Label: label}
		}
		total = total*26 + int(ch-'A') + 1
	}
	return total - 1, nil
}

// Label Index 的逆映射，返回规范大写列标
// 0 -> "A", 25 -> "Z", 26 -> "AA"
func Label(index int) string {
	if index < 0 {
		return ""
	}

	var buf []byte
	for index >= 0 {
		buf = append([]byte{byte('A' + index%26)}, buf...)
		index = index/26 - 1
	}
	return string(buf)
}
