/*
 * @module data_converter
 * @description 数据转换工具模块，负责字符集转换与宽松的日期解析
 * @architecture 工具函数模式，提供静态转换方法集合
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 无状态转换：输入 -> 转换逻辑 -> 输出
 * @rules
 *   - 编码转换需要支持常见中文字符集
 *   - 日期解析按候选格式依次尝试，失败返回错误而非静默猜测
 * @dependencies
 *   - golang.org/x/text: 编码转换
 *   - time: 时间处理
 * @refs
 *   - service/importer/*: 导入流水线
 */

package utils

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeReader 按声明的字符集包装读取器，输出UTF-8
//
// 支持 utf-8（原样）、gbk/gb2312/gb18030。
func DecodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "gbk", "gb2312":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case "gb18030":
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), nil
	}
	return nil, fmt.Errorf("不支持的字符集: %s", charset)
}

// 日期解析候选格式，ISO优先
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
}

// ParseDate 宽松解析日期字符串，preferred为空时按候选格式依次尝试
func ParseDate(value, preferred string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("日期字符串为空")
	}
	if preferred != "" {
		if t, err := time.Parse(preferred, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", value)
}

// FormatDateISO 日期的规范ISO形式
func FormatDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}
