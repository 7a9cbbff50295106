package controllers

import (
	"mne-service/service/models"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Code   string      `json:"code,omitempty" example:"VALUE_TOO_HIGH"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) APIResponse {
	return APIResponse{Status: 0, Msg: msg, Data: data}
}

// BadRequestResponse 参数错误响应
func BadRequestResponse(msg string, err error) APIResponse {
	return errorResponse(400, msg, err)
}

// NotFoundResponse 资源不存在响应
func NotFoundResponse(msg string, err error) APIResponse {
	return errorResponse(404, msg, err)
}

// ConflictResponse 资源冲突响应
func ConflictResponse(msg string, err error) APIResponse {
	return errorResponse(409, msg, err)
}

// InternalErrorResponse 服务器内部错误响应
func InternalErrorResponse(msg string, err error) APIResponse {
	return errorResponse(500, msg, err)
}

// ServiceErrorResponse 按业务错误类型映射响应，非业务错误归为内部错误
func ServiceErrorResponse(msg string, err error) APIResponse {
	if se, ok := models.AsServiceError(err); ok {
		switch {
		case se.IsNotFound():
			return APIResponse{Status: 404, Msg: msg + ": " + se.Message, Code: se.Code}
		case se.IsConflict():
			return APIResponse{Status: 409, Msg: msg + ": " + se.Message, Code: se.Code}
		default:
			return APIResponse{Status: 400, Msg: msg + ": " + se.Message, Code: se.Code}
		}
	}
	return errorResponse(500, msg, err)
}

func errorResponse(status int, msg string, err error) APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	resp := APIResponse{Status: status, Msg: msg}
	if se, ok := models.AsServiceError(err); ok {
		resp.Code = se.Code
	}
	return resp
}
