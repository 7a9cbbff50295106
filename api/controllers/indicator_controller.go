/*
 * @module api/controllers/indicator_controller
 * @description 指标管理控制器，提供指标的创建、查询与配置更新接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow HTTP请求 -> 参数验证 -> 服务调用 -> 响应返回
 * @rules 指标定义校验在服务层完成，控制器只做请求解析与错误映射
 * @dependencies service/submission, service/models
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mne-service/service"
	"mne-service/service/models"
	"mne-service/service/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// IndicatorController 指标管理控制器
type IndicatorController struct {
	submissionService *submission.Service
}

// NewIndicatorController 创建指标管理控制器
func NewIndicatorController() *IndicatorController {
	return &IndicatorController{
		submissionService: service.GlobalSubmissionService,
	}
}

// CreateIndicator 创建指标
// @Summary 创建指标
// @Description 创建新的监测指标
// @Description
// @Description **支持的数据类型:**
// @Description - NUMBER: 数值，支持可选上下限
// @Description - PERCENT: 百分比，默认限定[0,100]
// @Description - BOOLEAN: 布尔，仅接受true/false
// @Description - TEXT: 自由文本
// @Description - CATEGORICAL: 分类多选，必须携带分类定义
// @Tags 指标管理
// @Accept json
// @Produce json
// @Param indicator body models.Indicator true "指标定义"
// @Success 200 {object} APIResponse{data=models.Indicator} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /indicators [post]
func (c *IndicatorController) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	var indicator models.Indicator
	if err := json.NewDecoder(r.Body).Decode(&indicator); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	created, err := c.submissionService.CreateIndicator(r.Context(), &indicator)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("创建指标失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建指标成功", created))
}

// GetIndicator 获取指标详情
// @Summary 获取指标详情
// @Description 按ID获取指标定义
// @Tags 指标管理
// @Produce json
// @Param id path string true "指标ID"
// @Success 200 {object} APIResponse{data=models.Indicator}
// @Failure 404 {object} APIResponse "指标不存在"
// @Router /indicators/{id} [get]
func (c *IndicatorController) GetIndicator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	indicator, err := c.submissionService.GetIndicator(r.Context(), id)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取指标失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取指标成功", indicator))
}

// ListIndicators 获取指标列表
// @Summary 获取指标列表
// @Description 分页获取指标列表，支持按数据类型过滤
// @Tags 指标管理
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Param data_type query string false "数据类型过滤"
// @Success 200 {object} PaginatedResponse{data=[]models.Indicator}
// @Router /indicators [get]
func (c *IndicatorController) ListIndicators(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	indicators, total, err := c.submissionService.ListIndicators(r.Context(), r.URL.Query().Get("data_type"), size, (page-1)*size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取指标列表失败", err))
		return
	}
	render.JSON(w, r, PaginatedResponse{
		Status: 0,
		Msg:    "获取指标列表成功",
		Data:   indicators,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// UpdateIndicator 更新指标配置
// @Summary 更新指标配置
// @Description 更新指标的可变配置字段，ID与数据类型不可变
// @Tags 指标管理
// @Accept json
// @Produce json
// @Param id path string true "指标ID"
// @Param updates body map[string]interface{} true "配置更新"
// @Success 200 {object} APIResponse{data=models.Indicator}
// @Failure 404 {object} APIResponse "指标不存在"
// @Router /indicators/{id} [put]
func (c *IndicatorController) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	indicator, err := c.submissionService.UpdateIndicatorConfig(r.Context(), id, updates)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("更新指标配置失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新指标配置成功", indicator))
}
