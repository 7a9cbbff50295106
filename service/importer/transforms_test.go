/*
 * @module service/importer/transforms_test
 * @description 模板列转换与模板服务单元测试
 * @architecture 测试层
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 构造模板与原始行 -> 应用转换 -> 断言归一化结果
 * @rules 覆盖trim/date/number/category/custom五种转换与默认模板生成
 * @dependencies testing, github.com/stretchr/testify, testutil
 */

package importer

import (
	"context"
	"testing"

	"mne-service/service/meta"
	"mne-service/service/models"
	"mne-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberIndicator() *models.Indicator {
	return &models.Indicator{ID: "ind-1", DataType: meta.DataTypeNumber}
}

func categoricalIndicator() *models.Indicator {
	return &models.Indicator{
		ID:       "ind-2",
		DataType: meta.DataTypeCategorical,
		Categories: models.CategoryList{
			{ID: "funding", Label: "资金短缺"},
			{ID: "staffing", Label: "人员不足"},
		},
	}
}

func singleColumnTemplate(col models.ColumnConfig) *models.Template {
	return &models.Template{
		Kind:    meta.TemplateKindImport,
		Columns: models.ColumnConfigList{col},
	}
}

func TestTransformTrim(t *testing.T) {
	tpl := singleColumnTemplate(models.ColumnConfig{Header: "evidence", Field: "evidence", Transform: meta.TransformTrim})
	tr := NewColumnTransformer(numberIndicator(), tpl, nil)

	out := tr.Apply(models.JSONB{"evidence": "  现场照片  "})
	assert.Equal(t, "现场照片", out["evidence"])
}

func TestTransformDate(t *testing.T) {
	t.Run("按列指定的源格式解析", func(t *testing.T) {
		tpl := singleColumnTemplate(models.ColumnConfig{
			Header: "reported_at", Field: "reported_at",
			Transform: meta.TransformDate, SourceFormat: "02/01/2006",
		})
		tr := NewColumnTransformer(numberIndicator(), tpl, nil)

		out := tr.Apply(models.JSONB{"reported_at": "31/01/2026"})
		assert.Equal(t, "2026-01-31", out["reported_at"])
	})

	t.Run("候选格式兜底", func(t *testing.T) {
		tpl := singleColumnTemplate(models.ColumnConfig{
			Header: "reported_at", Field: "reported_at", Transform: meta.TransformDate,
		})
		tr := NewColumnTransformer(numberIndicator(), tpl, nil)

		out := tr.Apply(models.JSONB{"reported_at": "2026/01/31"})
		assert.Equal(t, "2026-01-31", out["reported_at"])
	})

	t.Run("无法解析时保留原值", func(t *testing.T) {
		tpl := singleColumnTemplate(models.ColumnConfig{
			Header: "reported_at", Field: "reported_at", Transform: meta.TransformDate,
		})
		tr := NewColumnTransformer(numberIndicator(), tpl, nil)

		out := tr.Apply(models.JSONB{"reported_at": "下周三"})
		assert.Equal(t, "下周三", out["reported_at"])
	})
}

func TestTransformNumber(t *testing.T) {
	tpl := singleColumnTemplate(models.ColumnConfig{
		Header: "value", Field: "value", Transform: meta.TransformNumber, StripCommas: true,
	})
	tr := NewColumnTransformer(numberIndicator(), tpl, nil)

	out := tr.Apply(models.JSONB{"value": "1,234.5"})
	assert.Equal(t, 1234.5, out["value"])

	out = tr.Apply(models.JSONB{"value": "非数字"})
	assert.Equal(t, "非数字", out["value"])
}

func TestTransformCategory(t *testing.T) {
	tpl := singleColumnTemplate(models.ColumnConfig{Header: "value", Field: "value", Transform: meta.TransformCategory})
	tr := NewColumnTransformer(categoricalIndicator(), tpl, nil)

	t.Run("标签与ID大小写变体映射", func(t *testing.T) {
		out := tr.Apply(models.JSONB{"value": "资金短缺, STAFFING"})
		assert.Equal(t, "funding,staffing", out["value"])
	})

	t.Run("未命中退回小写原值", func(t *testing.T) {
		out := tr.Apply(models.JSONB{"value": "WHATEVER"})
		assert.Equal(t, "whatever", out["value"])
	})
}

func TestTransformCustomScript(t *testing.T) {
	script := `
func Run(params map[string]interface{}) (interface{}, error) {
	v := params["value"].(string)
	return v + "-转换后", nil
}`
	tpl := singleColumnTemplate(models.ColumnConfig{
		Header: "value", Field: "value", Transform: meta.TransformCustom, Script: script,
	})
	tr := NewColumnTransformer(numberIndicator(), tpl, NewScriptExecutor())

	out := tr.Apply(models.JSONB{"value": "abc"})
	assert.Equal(t, "abc-转换后", out["value"])

	t.Run("脚本异常保留原值", func(t *testing.T) {
		broken := singleColumnTemplate(models.ColumnConfig{
			Header: "value", Field: "value", Transform: meta.TransformCustom, Script: "this is not go",
		})
		tr := NewColumnTransformer(numberIndicator(), broken, NewScriptExecutor())

		out := tr.Apply(models.JSONB{"value": "abc"})
		assert.Equal(t, "abc", out["value"])
	})
}

func TestApplyDefaultsAndMissing(t *testing.T) {
	tpl := &models.Template{
		Kind: meta.TemplateKindImport,
		Columns: models.ColumnConfigList{
			{Header: "disaggregation_key", Field: "disaggregation_key", Transform: meta.TransformTrim, Default: "总计"},
			{Header: "evidence", Field: "evidence", Transform: meta.TransformTrim},
		},
	}
	tr := NewColumnTransformer(numberIndicator(), tpl, nil)

	out := tr.Apply(models.JSONB{})
	assert.Equal(t, "总计", out["disaggregation_key"])
	assert.Nil(t, out["evidence"])
}

func TestGetOrCreateDefaultTemplate(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewTemplateService(tdb.DB)
	ctx := context.Background()

	t.Run("数值指标默认number转换", func(t *testing.T) {
		indicator := factory.CreateIndicator()
		tpl, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
		require.NoError(t, err)
		assert.True(t, tpl.IsDefault)
		require.Len(t, tpl.Columns, 4)
		assert.Equal(t, meta.TransformDate, tpl.Columns[0].Transform)
		assert.Equal(t, meta.TransformNumber, tpl.Columns[1].Transform)

		// 再次获取返回同一模板而非新建
		again, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
		require.NoError(t, err)
		assert.Equal(t, tpl.ID, again.ID)
	})

	t.Run("分类指标默认category转换", func(t *testing.T) {
		indicator := factory.CreateIndicator(testutil.WithCategories(
			[]models.Category{{ID: "funding", Label: "资金短缺"}},
			models.CategoryConfig{},
		))
		tpl, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
		require.NoError(t, err)
		assert.Equal(t, meta.TransformCategory, tpl.Columns[1].Transform)
	})

	t.Run("文本指标默认trim转换", func(t *testing.T) {
		indicator := factory.CreateIndicator(testutil.WithDataType(meta.DataTypeText))
		tpl, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindExport)
		require.NoError(t, err)
		assert.Equal(t, meta.TransformTrim, tpl.Columns[1].Transform)
		assert.Equal(t, "默认导出模板", tpl.Name)
	})

	t.Run("无效模板类型", func(t *testing.T) {
		indicator := factory.CreateIndicator()
		_, err := svc.GetOrCreateDefault(ctx, indicator, "WHATEVER")
		se, ok := models.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, meta.ErrCodeInvalidValue, se.Code)
	})
}

func TestCreateTemplateReplacesDefault(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewTemplateService(tdb.DB)
	ctx := context.Background()
	indicator := factory.CreateIndicator()

	first, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
	require.NoError(t, err)

	replacement := &models.Template{
		IndicatorID: indicator.ID,
		Kind:        meta.TemplateKindImport,
		Name:        "自定义模板",
		IsDefault:   true,
		Columns: models.ColumnConfigList{
			{Header: "日期", Field: "reported_at", Transform: meta.TransformDate, SourceFormat: "02/01/2006"},
			{Header: "数值", Field: "value", Transform: meta.TransformNumber, StripCommas: true},
		},
	}
	require.NoError(t, svc.CreateTemplate(ctx, replacement))

	var old models.Template
	require.NoError(t, tdb.DB.First(&old, "id = ?", first.ID).Error)
	assert.False(t, old.IsDefault)

	resolved, err := svc.GetOrCreateDefault(ctx, indicator, meta.TemplateKindImport)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, resolved.ID)
}
