/*
 * @module service/anomaly/detector_test
 * @description 异常检测器单元测试
 * @architecture 测试层
 * @documentReference ai_docs/anomaly_design.md
 * @stateFlow 构造历史序列 -> 执行检测 -> 断言结果与原因
 * @rules 覆盖范围检查、MAD/IQR离群点、斜率/均值趋势突变与配置合并
 * @dependencies testing, github.com/stretchr/testify
 */

package anomaly

import (
	"strings"
	"testing"

	"mne-service/service/meta"
	"mne-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestCheckRange(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeNumber,
		MinValue: floatPtr(10),
		MaxValue: floatPtr(100),
	}

	t.Run("低于下限", func(t *testing.T) {
		result := CheckRange(indicator, 5)
		assert.True(t, result.IsAnomaly)
		assert.Contains(t, result.Reason(), "低于下限")
	})

	t.Run("高于上限", func(t *testing.T) {
		result := CheckRange(indicator, 150)
		assert.True(t, result.IsAnomaly)
		assert.Contains(t, result.Reason(), "高于上限")
	})

	t.Run("范围内不异常", func(t *testing.T) {
		assert.False(t, CheckRange(indicator, 50).IsAnomaly)
	})

	t.Run("百分比默认边界0到100", func(t *testing.T) {
		percent := &models.Indicator{DataType: meta.DataTypePercent}
		assert.True(t, CheckRange(percent, 120).IsAnomaly)
		assert.True(t, CheckRange(percent, -5).IsAnomaly)
		assert.False(t, CheckRange(percent, 99).IsAnomaly)
	})

	t.Run("其他数据类型永不异常", func(t *testing.T) {
		text := &models.Indicator{DataType: meta.DataTypeText}
		assert.False(t, CheckRange(text, 99999).IsAnomaly)
	})
}

func TestDetectForNewValueMAD(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeNumber,
		AnomalyConfig: models.AnomalyConfig{
			Enabled: true,
			Outlier: &models.OutlierConfig{
				Method:     meta.OutlierMethodMAD,
				WindowSize: 8,
				MinPoints:  6,
			},
		},
	}
	baseline := []float64{10, 12, 11, 13, 12, 10, 11, 12}

	t.Run("离群值被标记", func(t *testing.T) {
		result := DetectForNewValue(indicator, baseline, 50)
		assert.True(t, result.IsAnomaly)
		assert.Contains(t, result.Reason(), "Outlier")
	})

	t.Run("正常值不被标记", func(t *testing.T) {
		result := DetectForNewValue(indicator, baseline, 11)
		assert.False(t, result.IsAnomaly)
	})
}

func TestDetectForNewValueIQR(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeNumber,
		AnomalyConfig: models.AnomalyConfig{
			Enabled: true,
			Outlier: &models.OutlierConfig{
				Method:     meta.OutlierMethodIQR,
				WindowSize: 8,
				MinPoints:  6,
			},
		},
	}
	baseline := []float64{100, 105, 102, 108, 103, 107, 104, 106}

	result := DetectForNewValue(indicator, baseline, 200)
	require.True(t, result.IsAnomaly)
	assert.Contains(t, result.Reason(), "Outlier")
	assert.Contains(t, result.Reason(), "IQR")
}

func TestDetectForNewValueDisabledFallsBackToRange(t *testing.T) {
	indicator := &models.Indicator{
		DataType: meta.DataTypeNumber,
		MinValue: floatPtr(0),
		MaxValue: floatPtr(10),
	}

	result := DetectForNewValue(indicator, []float64{1, 2, 3}, 50)
	assert.True(t, result.IsAnomaly)
	assert.Contains(t, result.Reason(), "高于上限")
}

func TestTrendSlopeShift(t *testing.T) {
	cfg := Config{
		Enabled: true,
		// 离群点子检查要求的点数设高，确保只触发趋势子检查
		Outlier: models.OutlierConfig{Method: meta.OutlierMethodMAD, Threshold: 3.5, WindowSize: 10, MinPoints: 10},
		Trend:   models.TrendConfig{Method: meta.TrendMethodSlopeShift, Threshold: 2.0, WindowSize: 2},
	}

	results := AssessSeries([]float64{1, 2, 3, 100}, cfg)
	last := results[len(results)-1]
	require.True(t, last.IsAnomaly)
	assert.Contains(t, last.Reason(), "SLOPE_SHIFT")

	// 平稳序列不触发
	results = AssessSeries([]float64{1, 2, 3, 4}, cfg)
	assert.False(t, results[len(results)-1].IsAnomaly)
}

func TestTrendMeanShift(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Outlier: models.OutlierConfig{Method: meta.OutlierMethodMAD, Threshold: 3.5, WindowSize: 10, MinPoints: 10},
		Trend:   models.TrendConfig{Method: meta.TrendMethodMeanShift, Threshold: 0.3, WindowSize: 2},
	}

	results := AssessSeries([]float64{10, 10, 10, 20}, cfg)
	last := results[len(results)-1]
	require.True(t, last.IsAnomaly)
	assert.Contains(t, last.Reason(), "MEAN_SHIFT")

	results = AssessSeries([]float64{10, 10, 10, 11}, cfg)
	assert.False(t, results[len(results)-1].IsAnomaly)
}

func TestAssessSeriesNoLookahead(t *testing.T) {
	cfg := MergeConfig(models.AnomalyConfig{
		Enabled: true,
		Outlier: &models.OutlierConfig{Method: meta.OutlierMethodMAD, WindowSize: 8, MinPoints: 6},
	})

	// 前6个点历史不足，不会因后面的离群值被误标
	series := []float64{10, 12, 11, 13, 12, 10, 11, 12, 50}
	results := AssessSeries(series, cfg)
	for i := 0; i < 6; i++ {
		assert.False(t, results[i].IsAnomaly, "第%d个点不应异常", i)
	}
	assert.True(t, results[len(results)-1].IsAnomaly)
}

func TestMultipleReasonsJoined(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Outlier: models.OutlierConfig{Method: meta.OutlierMethodMAD, Threshold: 3.5, WindowSize: 10, MinPoints: 4},
		Trend:   models.TrendConfig{Method: meta.TrendMethodMeanShift, Threshold: 0.3, WindowSize: 2},
	}

	// 末点同时触发离群点与均值偏移
	series := []float64{10, 11, 10, 11, 100}
	results := AssessSeries(series, cfg)
	last := results[len(results)-1]
	require.True(t, last.IsAnomaly)
	require.Len(t, last.Reasons, 2)
	assert.True(t, strings.Contains(last.Reason(), " | "))
}

func TestMergeConfigDefaults(t *testing.T) {
	t.Run("空配置取MAD与SLOPE_SHIFT默认值", func(t *testing.T) {
		cfg := MergeConfig(models.AnomalyConfig{Enabled: true})
		assert.Equal(t, meta.OutlierMethodMAD, cfg.Outlier.Method)
		assert.Equal(t, DefaultMADThreshold, cfg.Outlier.Threshold)
		assert.Equal(t, DefaultOutlierWindowSize, cfg.Outlier.WindowSize)
		assert.Equal(t, DefaultOutlierMinPoints, cfg.Outlier.MinPoints)
		assert.Equal(t, meta.TrendMethodSlopeShift, cfg.Trend.Method)
		assert.Equal(t, DefaultSlopeShiftThreshold, cfg.Trend.Threshold)
		assert.Equal(t, DefaultTrendWindowSize, cfg.Trend.WindowSize)
	})

	t.Run("阈值默认值随方法变化", func(t *testing.T) {
		cfg := MergeConfig(models.AnomalyConfig{
			Enabled: true,
			Outlier: &models.OutlierConfig{Method: meta.OutlierMethodIQR},
			Trend:   &models.TrendConfig{Method: meta.TrendMethodMeanShift},
		})
		assert.Equal(t, DefaultIQRMultiplier, cfg.Outlier.Threshold)
		assert.Equal(t, DefaultMeanShiftThreshold, cfg.Trend.Threshold)
	})

	t.Run("用户字段覆盖默认值且兄弟字段保留", func(t *testing.T) {
		cfg := MergeConfig(models.AnomalyConfig{
			Enabled: true,
			Outlier: &models.OutlierConfig{WindowSize: 20},
		})
		assert.Equal(t, 20, cfg.Outlier.WindowSize)
		assert.Equal(t, DefaultOutlierMinPoints, cfg.Outlier.MinPoints)
		assert.Equal(t, DefaultMADThreshold, cfg.Outlier.Threshold)
	})
}

func TestWindowDemand(t *testing.T) {
	cfg := MergeConfig(models.AnomalyConfig{Enabled: true})
	// 默认离群点窗口10 ≥ 趋势窗口5×2
	assert.Equal(t, 10, cfg.WindowDemand())

	cfg = MergeConfig(models.AnomalyConfig{
		Enabled: true,
		Trend:   &models.TrendConfig{WindowSize: 8},
	})
	assert.Equal(t, 16, cfg.WindowDemand())
}
