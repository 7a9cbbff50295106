/*
 * @module service/anomaly/detector
 * @description 异常检测器，提供范围检查与时间序列检测（MAD/IQR离群点、斜率/均值趋势突变）
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_design.md
 * @stateFlow 历史窗口读取 -> 离群点子检查 -> 趋势子检查 -> 结果合并
 * @rules 每个点仅使用严格早于该点的数据评估，不允许前视；原因以" | "连接
 * @dependencies service/models, service/meta
 * @refs service/submission/service.go, service/importer/service.go
 */

package anomaly

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"mne-service/service/meta"
	"mne-service/service/models"
)

// Assessment 单个数据点的检测结果
type Assessment struct {
	Index     int      `json:"index"`
	IsAnomaly bool     `json:"is_anomaly"`
	Reasons   []string `json:"reasons,omitempty"`
}

// Reason 将全部触发原因以" | "连接
func (a Assessment) Reason() string {
	return strings.Join(a.Reasons, " | ")
}

// CheckRange 范围模式检查，数值/百分比越界即为异常
//
// 百分比指标未设置边界时按[0,100]处理，其余数据类型永不异常。
func CheckRange(indicator *models.Indicator, value float64) Assessment {
	result := Assessment{}
	switch indicator.DataType {
	case meta.DataTypeNumber, meta.DataTypePercent:
	default:
		return result
	}

	min, max := indicator.EffectiveBounds()
	if min != nil && value < *min {
		result.IsAnomaly = true
		result.Reasons = append(result.Reasons, fmt.Sprintf("数值%v低于下限%v", value, *min))
	}
	if max != nil && value > *max {
		result.IsAnomaly = true
		result.Reasons = append(result.Reasons, fmt.Sprintf("数值%v高于上限%v", value, *max))
	}
	return result
}

// AssessSeries 对整条序列逐点检测，每个点只使用其之前的数据
func AssessSeries(values []float64, cfg Config) []Assessment {
	results := make([]Assessment, len(values))
	for i := range values {
		results[i] = assessPoint(values, i, cfg)
	}
	return results
}

// DetectForNewValue 对新提交值检测：启用序列检测时取序列末点结果，否则退回范围检查
//
// recent为按时间升序排列的历史数值，新值追加在末尾参与评估。
func DetectForNewValue(indicator *models.Indicator, recent []float64, newValue float64) Assessment {
	cfg := MergeConfig(indicator.AnomalyConfig)
	if !cfg.Enabled {
		return CheckRange(indicator, newValue)
	}

	series := make([]float64, 0, len(recent)+1)
	series = append(series, recent...)
	series = append(series, newValue)
	assessments := AssessSeries(series, cfg)
	last := assessments[len(assessments)-1]
	last.Index = len(series) - 1
	return last
}

// assessPoint 评估序列中单个点，离群点与趋势子检查相互独立
func assessPoint(values []float64, index int, cfg Config) Assessment {
	result := Assessment{Index: index}
	x := values[index]
	if !isFinite(x) {
		return result
	}

	if reason, hit := checkOutlier(values, index, x, cfg.Outlier); hit {
		result.IsAnomaly = true
		result.Reasons = append(result.Reasons, reason)
	}
	if reason, hit := checkTrend(values, index, x, cfg.Trend); hit {
		result.IsAnomaly = true
		result.Reasons = append(result.Reasons, reason)
	}
	return result
}

// checkOutlier 离群点子检查，窗口为该点之前最多windowSize个有效值
func checkOutlier(values []float64, index int, x float64, cfg models.OutlierConfig) (string, bool) {
	start := index - cfg.WindowSize
	if start < 0 {
		start = 0
	}
	window := make([]float64, 0, index-start)
	for _, v := range values[start:index] {
		if isFinite(v) {
			window = append(window, v)
		}
	}
	if len(window) < cfg.MinPoints {
		return "", false
	}

	switch cfg.Method {
	case meta.OutlierMethodIQR:
		q1 := quantile(window, 0.25)
		q3 := quantile(window, 0.75)
		iqr := q3 - q1
		if iqr <= 0 {
			return "", false
		}
		lower := q1 - cfg.Threshold*iqr
		upper := q3 + cfg.Threshold*iqr
		if x < lower || x > upper {
			return fmt.Sprintf("Outlier(IQR): 值%.2f超出围栏[%.2f, %.2f]，IQR=%.2f", x, lower, upper, iqr), true
		}
	default: // MAD
		m := median(window)
		deviations := make([]float64, len(window))
		for i, v := range window {
			deviations[i] = math.Abs(v - m)
		}
		mad := median(deviations)
		if mad <= 0 {
			return "", false
		}
		z := 0.6745 * (x - m) / mad
		if math.Abs(z) >= cfg.Threshold {
			return fmt.Sprintf("Outlier(MAD): 修正z分数%.2f达到阈值%.2f", z, cfg.Threshold), true
		}
	}
	return "", false
}

// checkTrend 趋势子检查，需要至少2×windowSize−1个历史点
//
// 当前窗口为以该点结尾的最近windowSize个点，前一窗口为再往前的windowSize个点，
// 两个窗口必须全部为有效数值。
func checkTrend(values []float64, index int, x float64, cfg models.TrendConfig) (string, bool) {
	w := cfg.WindowSize
	if w <= 0 || index < 2*w-1 {
		return "", false
	}

	current := values[index-w+1 : index+1]
	previous := values[index-2*w+1 : index-w+1]
	for _, v := range current {
		if !isFinite(v) {
			return "", false
		}
	}
	for _, v := range previous {
		if !isFinite(v) {
			return "", false
		}
	}

	switch cfg.Method {
	case meta.TrendMethodMeanShift:
		prevMean := mean(previous)
		diff := math.Abs(x - prevMean)
		ratio := diff
		if prevMean != 0 {
			ratio = diff / math.Abs(prevMean)
		}
		if ratio >= cfg.Threshold {
			return fmt.Sprintf("Trend(MEAN_SHIFT): 偏离前窗口均值%.2f达%.2f倍，阈值%.2f", prevMean, ratio, cfg.Threshold), true
		}
	default: // SLOPE_SHIFT
		currSlope := olsSlope(current)
		prevSlope := olsSlope(previous)
		ratio := math.Abs(currSlope-prevSlope) / (math.Abs(prevSlope) + 1e-6)
		if ratio >= cfg.Threshold {
			return fmt.Sprintf("Trend(SLOPE_SHIFT): 斜率由%.3f变为%.3f，变化率%.2f达到阈值%.2f", prevSlope, currSlope, ratio, cfg.Threshold), true
		}
	}
	return "", false
}

// median 中位数
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// quantile 线性插值分位数，位置=(n-1)×q
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := float64(len(sorted)-1) * q
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// olsSlope 最小二乘斜率，x取下标0..n-1
func olsSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// mean 算术平均
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
