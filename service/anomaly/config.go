/*
 * @module service/anomaly/config
 * @description 异常检测配置合并，将用户部分配置与默认值逐字段深合并为完整配置
 * @architecture 分层架构 - 配置层
 * @documentReference ai_docs/anomaly_design.md
 * @stateFlow 指标配置读取 -> 逐字段合并默认值 -> 完整配置输出
 * @rules 嵌套的outlier/trend子配置按字段合并，避免浅合并丢失兄弟字段默认值
 * @dependencies service/models, service/meta
 * @refs service/anomaly/detector.go
 */

package anomaly

import (
	"mne-service/service/meta"
	"mne-service/service/models"
)

// 检测默认值，可调参数而非固定行为
const (
	// DefaultMADThreshold 修正z分数阈值
	DefaultMADThreshold = 3.5
	// DefaultIQRMultiplier IQR围栏倍数
	DefaultIQRMultiplier = 1.5
	// DefaultSlopeShiftThreshold 斜率变化率阈值
	DefaultSlopeShiftThreshold = 2.0
	// DefaultMeanShiftThreshold 均值偏移比例阈值
	DefaultMeanShiftThreshold = 0.3
	// DefaultOutlierWindowSize 离群点检测窗口大小
	DefaultOutlierWindowSize = 10
	// DefaultOutlierMinPoints 离群点检测最少有效点数
	DefaultOutlierMinPoints = 5
	// DefaultTrendWindowSize 趋势检测窗口大小
	DefaultTrendWindowSize = 5
)

// Config 合并默认值后的完整检测配置
type Config struct {
	Enabled bool
	Outlier models.OutlierConfig
	Trend   models.TrendConfig
}

// MergeConfig 将指标上的部分配置与默认值合并为完整配置
//
// outlier/trend子配置逐字段取值：用户字段为零值时回退默认值，
// 阈值默认值依所选方法而定。
func MergeConfig(cfg models.AnomalyConfig) Config {
	merged := Config{
		Enabled: cfg.Enabled,
		Outlier: models.OutlierConfig{
			Method:     meta.OutlierMethodMAD,
			WindowSize: DefaultOutlierWindowSize,
			MinPoints:  DefaultOutlierMinPoints,
		},
		Trend: models.TrendConfig{
			Method:     meta.TrendMethodSlopeShift,
			WindowSize: DefaultTrendWindowSize,
		},
	}

	if cfg.Outlier != nil {
		if meta.IsValidOutlierMethod(cfg.Outlier.Method) {
			merged.Outlier.Method = cfg.Outlier.Method
		}
		if cfg.Outlier.WindowSize > 0 {
			merged.Outlier.WindowSize = cfg.Outlier.WindowSize
		}
		if cfg.Outlier.MinPoints > 0 {
			merged.Outlier.MinPoints = cfg.Outlier.MinPoints
		}
		if cfg.Outlier.Threshold > 0 {
			merged.Outlier.Threshold = cfg.Outlier.Threshold
		}
	}
	if merged.Outlier.Threshold <= 0 {
		switch merged.Outlier.Method {
		case meta.OutlierMethodIQR:
			merged.Outlier.Threshold = DefaultIQRMultiplier
		default:
			merged.Outlier.Threshold = DefaultMADThreshold
		}
	}

	if cfg.Trend != nil {
		if meta.IsValidTrendMethod(cfg.Trend.Method) {
			merged.Trend.Method = cfg.Trend.Method
		}
		if cfg.Trend.WindowSize > 0 {
			merged.Trend.WindowSize = cfg.Trend.WindowSize
		}
		if cfg.Trend.Threshold > 0 {
			merged.Trend.Threshold = cfg.Trend.Threshold
		}
	}
	if merged.Trend.Threshold <= 0 {
		switch merged.Trend.Method {
		case meta.TrendMethodMeanShift:
			merged.Trend.Threshold = DefaultMeanShiftThreshold
		default:
			merged.Trend.Threshold = DefaultSlopeShiftThreshold
		}
	}

	return merged
}

// WindowDemand 检测所需的历史点数上限，用于限定读取的历史提交数量
func (c Config) WindowDemand() int {
	demand := c.Outlier.WindowSize
	if trendDemand := c.Trend.WindowSize * 2; trendDemand > demand {
		demand = trendDemand
	}
	return demand
}
