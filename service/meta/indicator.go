package meta

// 指标数据类型常量
const (
	DataTypeNumber      = "NUMBER"
	DataTypePercent     = "PERCENT"
	DataTypeBoolean     = "BOOLEAN"
	DataTypeText        = "TEXT"
	DataTypeCategorical = "CATEGORICAL"
)

var DataTypes = []MetaField{
	{
		Name:        "NUMBER",
		DisplayName: "数值",
		Type:        "string",
		Required:    true,
	},
	{
		Name:        "PERCENT",
		DisplayName: "百分比",
		Type:        "string",
		Required:    true,
	},
	{
		Name:        "BOOLEAN",
		DisplayName: "布尔",
		Type:        "string",
		Required:    true,
	},
	{
		Name:        "TEXT",
		DisplayName: "文本",
		Type:        "string",
		Required:    true,
	},
	{
		Name:        "CATEGORICAL",
		DisplayName: "分类",
		Type:        "string",
		Required:    true,
	},
}

// IsValidDataType 验证指标数据类型
func IsValidDataType(dataType string) bool {
	switch dataType {
	case DataTypeNumber, DataTypePercent, DataTypeBoolean, DataTypeText, DataTypeCategorical:
		return true
	}
	return false
}

// 报告频率常量
const (
	CadenceDaily   = "DAILY"
	CadenceWeekly  = "WEEKLY"
	CadenceMonthly = "MONTHLY"
)

// CadenceIntervalDays 各报告频率对应的期望间隔天数
var CadenceIntervalDays = map[string]int{
	CadenceDaily:   1,
	CadenceWeekly:  7,
	CadenceMonthly: 30,
}

var Cadences = []MetaField{
	{
		Name:        "DAILY",
		DisplayName: "每日",
		Type:        "string",
		Description: "期望间隔1天",
	},
	{
		Name:        "WEEKLY",
		DisplayName: "每周",
		Type:        "string",
		Description: "期望间隔7天",
	},
	{
		Name:        "MONTHLY",
		DisplayName: "每月",
		Type:        "string",
		Description: "期望间隔30天",
	},
}

// IsValidCadence 验证报告频率
func IsValidCadence(cadence string) bool {
	_, ok := CadenceIntervalDays[cadence]
	return ok
}
