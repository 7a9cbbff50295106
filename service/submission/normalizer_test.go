/*
 * @module service/submission/normalizer_test
 * @description 提交值规范化器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow 构造指标 -> 规范化原始值 -> 断言规范形式或错误码
 * @rules 覆盖五种数据类型的合法值、边界越界与非法输入
 * @dependencies testing, github.com/stretchr/testify
 */

package submission

import (
	"testing"

	"mne-service/service/meta"
	"mne-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func assertServiceErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	se, ok := models.AsServiceError(err)
	require.True(t, ok, "期望ServiceError，实际: %v", err)
	assert.Equal(t, code, se.Code)
}

func TestNormalizeNumber(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeNumber,
		MinValue: floatPtr(10),
		MaxValue: floatPtr(100),
	}

	t.Run("合法数值取规范十进制形式", func(t *testing.T) {
		v, err := NormalizeValue(indicator, "42.5")
		require.NoError(t, err)
		assert.Equal(t, "42.5", v)

		v, err = NormalizeValue(indicator, "42.50")
		require.NoError(t, err)
		assert.Equal(t, "42.5", v)

		v, err = NormalizeValue(indicator, 42)
		require.NoError(t, err)
		assert.Equal(t, "42", v)
	})

	t.Run("低于下限", func(t *testing.T) {
		_, err := NormalizeValue(indicator, 5)
		assertServiceErrorCode(t, err, meta.ErrCodeValueTooLow)
	})

	t.Run("高于上限", func(t *testing.T) {
		_, err := NormalizeValue(indicator, 150)
		assertServiceErrorCode(t, err, meta.ErrCodeValueTooHigh)
	})

	t.Run("非数值输入", func(t *testing.T) {
		_, err := NormalizeValue(indicator, "abc")
		assertServiceErrorCode(t, err, meta.ErrCodeInvalidValue)
	})
}

func TestNormalizePercent(t *testing.T) {
	indicator := &models.Indicator{DataType: meta.DataTypePercent}

	t.Run("默认边界0到100", func(t *testing.T) {
		v, err := NormalizeValue(indicator, 99.5)
		require.NoError(t, err)
		assert.Equal(t, "99.5", v)

		_, err = NormalizeValue(indicator, 120)
		assertServiceErrorCode(t, err, meta.ErrCodeValueOutOfRange)

		_, err = NormalizeValue(indicator, -1)
		assertServiceErrorCode(t, err, meta.ErrCodeValueOutOfRange)
	})

	t.Run("显式边界覆盖默认值", func(t *testing.T) {
		bounded := &models.Indicator{
			DataType: meta.DataTypePercent,
			MinValue: floatPtr(50),
			MaxValue: floatPtr(80),
		}
		_, err := NormalizeValue(bounded, 49)
		assertServiceErrorCode(t, err, meta.ErrCodeValueOutOfRange)
	})
}

func TestNormalizeBoolean(t *testing.T) {
	indicator := &models.Indicator{DataType: meta.DataTypeBoolean}

	cases := []struct {
		name string
		raw  interface{}
		want string
		ok   bool
	}{
		{"原生布尔true", true, "true", true},
		{"原生布尔false", false, "false", true},
		{"大写字符串", "TRUE", "true", true},
		{"带空白字符串", " false ", "false", true},
		{"数字不接受", 1, "", false},
		{"任意字符串不接受", "yes", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := NormalizeValue(indicator, c.raw)
			if c.ok {
				require.NoError(t, err)
				assert.Equal(t, c.want, v)
			} else {
				assertServiceErrorCode(t, err, meta.ErrCodeInvalidValue)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	indicator := &models.Indicator{DataType: meta.DataTypeText}

	v, err := NormalizeValue(indicator, "现场走访记录")
	require.NoError(t, err)
	assert.Equal(t, "现场走访记录", v)

	_, err = NormalizeValue(indicator, nil)
	assertServiceErrorCode(t, err, meta.ErrCodeInvalidValue)
}

func TestNormalizeCategorical(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeCategorical,
		Categories: models.CategoryList{
			{ID: "funding", Label: "资金短缺"},
			{ID: "staffing", Label: "人员不足"},
		},
		CategoryConfig: models.CategoryConfig{AllowMultiple: true, MaxSelections: 2},
	}

	t.Run("多选规范化", func(t *testing.T) {
		v, err := NormalizeValue(indicator, "funding, staffing")
		require.NoError(t, err)
		assert.Equal(t, "funding,staffing", v)
	})

	t.Run("未知分类ID", func(t *testing.T) {
		_, err := NormalizeValue(indicator, "unknown")
		assertServiceErrorCode(t, err, meta.ErrCodeInvalidCategoryValue)
	})

	t.Run("未定义分类的指标", func(t *testing.T) {
		bare := &models.Indicator{DataType: meta.DataTypeCategorical}
		_, err := NormalizeValue(bare, "funding")
		assertServiceErrorCode(t, err, meta.ErrCodeNoCategories)
	})
}

func TestNormalizeUnknownDataType(t *testing.T) {
	indicator := &models.Indicator{DataType: "GEOJSON"}
	_, err := NormalizeValue(indicator, "whatever")
	assertServiceErrorCode(t, err, meta.ErrCodeInvalidValue)
}
