/*
 * @module service/models/errors
 * @description 业务错误类型定义，所有对外暴露的失败都携带稳定的错误码和可读消息
 * @architecture 分层架构 - 错误模型
 * @documentReference ai_docs/error_taxonomy.md
 * @stateFlow 业务校验失败 -> ServiceError -> 控制器映射为HTTP响应
 * @rules 校验类错误可恢复，系统类错误导致任务标记失败；错误不得静默吞掉非法数据
 * @dependencies service/meta
 * @refs api/controllers/response.go
 */

package models

import (
	"errors"
	"fmt"

	"mne-service/service/meta"
)

// ServiceError 携带稳定错误码的业务错误
type ServiceError struct {
	Code    string `json:"code" example:"VALUE_TOO_LOW"`
	Message string `json:"message" example:"数值低于指标下限"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewServiceError 创建业务错误
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// NewServiceErrorf 创建带格式化消息的业务错误
func NewServiceErrorf(code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsServiceError 从错误链中提取ServiceError
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsValidationError 判断是否为校验类错误（可恢复，4xx语义）
func (e *ServiceError) IsValidationError() bool {
	return meta.IsValidationErrorCode(e.Code)
}

// IsNotFound 判断是否为实体不存在错误
func (e *ServiceError) IsNotFound() bool {
	return e.Code == meta.ErrCodeNotFound
}

// IsConflict 判断是否为冲突类错误（CREATE_ONLY下的重复提交）
func (e *ServiceError) IsConflict() bool {
	return e.Code == meta.ErrCodeDuplicateSubmission
}
