package meta

// 业务错误码常量，对外保持稳定
const (
	// 数值校验
	ErrCodeValueTooLow     = "VALUE_TOO_LOW"
	ErrCodeValueTooHigh    = "VALUE_TOO_HIGH"
	ErrCodeValueOutOfRange = "VALUE_OUT_OF_RANGE"
	ErrCodeInvalidValue    = "INVALID_VALUE"

	// 分类校验
	ErrCodeInvalidCategories     = "INVALID_CATEGORIES"
	ErrCodeDuplicateCategoryID   = "DUPLICATE_CATEGORY_ID"
	ErrCodeInvalidCategoryConfig = "INVALID_CATEGORY_CONFIG"
	ErrCodeRequiredCategory      = "REQUIRED_CATEGORY"
	ErrCodeMultipleNotAllowed    = "MULTIPLE_NOT_ALLOWED"
	ErrCodeMaxSelectionsExceeded = "MAX_SELECTIONS_EXCEEDED"
	ErrCodeInvalidCategoryValue  = "INVALID_CATEGORY_VALUE"
	ErrCodeNoCategories          = "NO_CATEGORIES"

	// 实体与状态
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeNotAnomaly   = "NOT_ANOMALY"
	ErrCodeInvalidState = "INVALID_STATE"

	// 导入
	ErrCodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	ErrCodeRowLimitExceeded    = "ROW_LIMIT_EXCEEDED"
	ErrCodeRequiredField       = "REQUIRED_FIELD"
	ErrCodeInvalidDate         = "INVALID_DATE"

	// 系统
	ErrCodeSystem = "SYSTEM_ERROR"
)

var validationErrorCodes = map[string]bool{
	ErrCodeValueTooLow:           true,
	ErrCodeValueTooHigh:          true,
	ErrCodeValueOutOfRange:       true,
	ErrCodeInvalidValue:          true,
	ErrCodeInvalidCategories:     true,
	ErrCodeDuplicateCategoryID:   true,
	ErrCodeInvalidCategoryConfig: true,
	ErrCodeRequiredCategory:      true,
	ErrCodeMultipleNotAllowed:    true,
	ErrCodeMaxSelectionsExceeded: true,
	ErrCodeInvalidCategoryValue:  true,
	ErrCodeNoCategories:          true,
	ErrCodeRequiredField:         true,
	ErrCodeInvalidDate:           true,
	ErrCodeInvalidState:          true,
}

// IsValidationErrorCode 判断错误码是否属于校验类（4xx语义）
func IsValidationErrorCode(code string) bool {
	return validationErrorCodes[code]
}
