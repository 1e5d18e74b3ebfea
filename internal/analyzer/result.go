package analyzer

import (
	"bytes"
	"encoding/json"
)

// Entry 单个请求列的统计结果
// Label 为调用方的原始记号；Freq 与 ErrMsg 二选一
type Entry struct {
	Label  string
	Freq   map[string]int
	ErrMsg string
}

// Result 一次分析的完整结果，按请求顺序排列
type Result struct {
	Entries []Entry
}

// errorKey 列级错误在 JSON 中的固定 key
const errorKey = "_error"

// MarshalJSON 序列化为有序 JSON 对象
// 形如 {"F": {"a": 2, "b": 1}, "G": {"_error": "..."}}
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if e.ErrMsg != "" {
			value, err = json.Marshal(map[string]string{errorKey: e.ErrMsg})
		} else {
			value, err = json.Marshal(e.Freq)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// upsert 追加或覆盖一个列结果
// 重复请求同一记号时保留首次出现的位置、采用最后一次的值（与 JSON key 语义一致）
func (r *Result) upsert(e Entry) {
	for i := range r.Entries {
		if r.Entries[i].Label == e.Label {
			r.Entries[i] = e
			return
		}
	}
	r.Entries = append(r.Entries, e)
}

// Get 按记号查找结果，供测试与调用方使用
func (r *Result) Get(label string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}
