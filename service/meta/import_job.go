package meta

// 导入任务状态常量
const (
	ImportJobStatusPending    = "PENDING"
	ImportJobStatusValidating = "VALIDATING"
	ImportJobStatusValidated  = "VALIDATED"
	ImportJobStatusImporting  = "IMPORTING"
	ImportJobStatusCompleted  = "COMPLETED"
	ImportJobStatusFailed     = "FAILED"
	ImportJobStatusCancelled  = "CANCELLED"
)

var ImportJobStatuses = []MetaField{
	{
		Name:        "PENDING",
		DisplayName: "待解析",
		Type:        "string",
	},
	{
		Name:        "VALIDATING",
		DisplayName: "校验中",
		Type:        "string",
	},
	{
		Name:        "VALIDATED",
		DisplayName: "校验完成",
		Type:        "string",
	},
	{
		Name:        "IMPORTING",
		DisplayName: "导入中",
		Type:        "string",
	},
	{
		Name:        "COMPLETED",
		DisplayName: "已完成",
		Type:        "string",
	},
	{
		Name:        "FAILED",
		DisplayName: "失败",
		Type:        "string",
	},
	{
		Name:        "CANCELLED",
		DisplayName: "已取消",
		Type:        "string",
	},
}

// 导入模式常量
const (
	ImportModeCreateOnly = "CREATE_ONLY"
	ImportModeUpsert     = "UPSERT"
)

// IsValidImportMode 验证导入模式
func IsValidImportMode(mode string) bool {
	return mode == ImportModeCreateOnly || mode == ImportModeUpsert
}

// 导入行校验状态常量
const (
	RowStatusPending  = "PENDING"
	RowStatusValid    = "VALID"
	RowStatusWarning  = "WARNING"
	RowStatusError    = "ERROR"
	RowStatusImported = "IMPORTED"
)

// 行级问题严重程度常量
const (
	IssueSeverityError   = "ERROR"
	IssueSeverityWarning = "WARNING"
)

// 模板类型常量
const (
	TemplateKindImport = "IMPORT"
	TemplateKindExport = "EXPORT"
)

// IsValidTemplateKind 验证模板类型
func IsValidTemplateKind(kind string) bool {
	return kind == TemplateKindImport || kind == TemplateKindExport
}

// 列转换类型常量
const (
	TransformNone     = ""
	TransformTrim     = "trim"
	TransformDate     = "date"
	TransformNumber   = "number"
	TransformCategory = "category"
	TransformCustom   = "custom"
)
