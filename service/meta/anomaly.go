package meta

// 离群点检测方法常量
const (
	OutlierMethodMAD = "MAD"
	OutlierMethodIQR = "IQR"
)

// 趋势突变检测方法常量
const (
	TrendMethodSlopeShift = "SLOPE_SHIFT"
	TrendMethodMeanShift  = "MEAN_SHIFT"
)

// 异常状态常量，仅当提交被标记为异常后才允许流转
const (
	AnomalyStatusDetected      = "DETECTED"
	AnomalyStatusAcknowledged  = "ACKNOWLEDGED"
	AnomalyStatusResolved      = "RESOLVED"
	AnomalyStatusFalsePositive = "FALSE_POSITIVE"
)

var AnomalyStatuses = []MetaField{
	{
		Name:        "DETECTED",
		DisplayName: "已检出",
		Type:        "string",
	},
	{
		Name:        "ACKNOWLEDGED",
		DisplayName: "已确认",
		Type:        "string",
	},
	{
		Name:        "RESOLVED",
		DisplayName: "已处理",
		Type:        "string",
	},
	{
		Name:        "FALSE_POSITIVE",
		DisplayName: "误报",
		Type:        "string",
	},
}

// IsValidOutlierMethod 验证离群点检测方法
func IsValidOutlierMethod(method string) bool {
	return method == OutlierMethodMAD || method == OutlierMethodIQR
}

// IsValidTrendMethod 验证趋势检测方法
func IsValidTrendMethod(method string) bool {
	return method == TrendMethodSlopeShift || method == TrendMethodMeanShift
}

// IsValidAnomalyStatus 验证异常状态
func IsValidAnomalyStatus(status string) bool {
	switch status {
	case AnomalyStatusDetected, AnomalyStatusAcknowledged, AnomalyStatusResolved, AnomalyStatusFalsePositive:
		return true
	}
	return false
}
