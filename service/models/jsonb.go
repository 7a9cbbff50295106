package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 通用 JSON 类型
type JSONB map[string]interface{}

// JSONBStringArray 用于存储字符串数组的 JSONB 类型
type JSONBStringArray []string

func scanJSONB(value interface{}, dest interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("类型断言失败: 不是 []byte 或 string")
	}
	return json.Unmarshal(bytes, dest)
}

// 实现 Scanner 接口
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	return scanJSONB(value, j)
}

// 实现 Valuer 接口
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// JSONBStringArray 的 Scanner 接口实现
func (j *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	return scanJSONB(value, j)
}

// JSONBStringArray 的 Valuer 接口实现
func (j JSONBStringArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// CategoryList 分类定义列表的 JSONB 类型
type CategoryList []Category

func (c *CategoryList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	return scanJSONB(value, c)
}

func (c CategoryList) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// CategoryConfig 的 Scanner 接口实现
func (c *CategoryConfig) Scan(value interface{}) error {
	if value == nil {
		*c = CategoryConfig{}
		return nil
	}
	return scanJSONB(value, c)
}

// CategoryConfig 的 Valuer 接口实现
func (c CategoryConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// AnomalyConfig 的 Scanner 接口实现
func (c *AnomalyConfig) Scan(value interface{}) error {
	if value == nil {
		*c = AnomalyConfig{}
		return nil
	}
	return scanJSONB(value, c)
}

// AnomalyConfig 的 Valuer 接口实现
func (c AnomalyConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// RowIssueList 导入行错误/警告列表的 JSONB 类型
type RowIssueList []RowIssue

func (l *RowIssueList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSONB(value, l)
}

func (l RowIssueList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// ColumnConfigList 模板列配置列表的 JSONB 类型
type ColumnConfigList []ColumnConfig

func (l *ColumnConfigList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSONB(value, l)
}

func (l ColumnConfigList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}
