/*
 * @module api/controllers/submission_controller
 * @description 提交管理控制器，提供提交创建、查询、异常状态流转与分类统计接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/submission_design.md
 * @stateFlow HTTP请求 -> 参数验证 -> 服务调用 -> 响应返回
 * @rules 值规范化与异常检测在服务层完成；校验类失败返回400并携带稳定错误码
 * @dependencies service/submission, service/models, service/meta
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mne-service/service"
	"mne-service/service/meta"
	"mne-service/service/submission"
	"mne-service/service/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SubmissionController 提交管理控制器
type SubmissionController struct {
	submissionService *submission.Service
}

// NewSubmissionController 创建提交管理控制器
func NewSubmissionController() *SubmissionController {
	return &SubmissionController{
		submissionService: service.GlobalSubmissionService,
	}
}

// SubmissionCreateRequest 创建提交请求
type SubmissionCreateRequest struct {
	ReportedAt        string      `json:"reported_at" binding:"required" example:"2024-06-01"`
	Value             interface{} `json:"value" binding:"required" example:"42.5"`
	Evidence          string      `json:"evidence,omitempty" example:"现场照片链接"`
	DisaggregationKey string      `json:"disaggregation_key,omitempty" example:"region=north"`
	CreatedBy         string      `json:"created_by,omitempty" example:"admin"`
}

// AnomalyReviewRequest 异常复核请求
type AnomalyReviewRequest struct {
	Status     string `json:"status,omitempty" example:"ACKNOWLEDGED"`
	ReviewedBy string `json:"reviewed_by" example:"admin"`
	Notes      string `json:"notes,omitempty" example:"数据采集口径变更导致"`
}

// CreateSubmission 创建提交
// @Summary 创建提交
// @Description 为指标创建一条提交，值按数据类型规范化后执行异常检测
// @Description
// @Description **异常检测模式:**
// @Description - 未启用异常配置: 仅对数值与百分比做范围检查
// @Description - 启用异常配置: 基于历史窗口执行离群点(MAD/IQR)与趋势(SLOPE_SHIFT/MEAN_SHIFT)检测
// @Tags 提交管理
// @Accept json
// @Produce json
// @Param id path string true "指标ID"
// @Param submission body SubmissionCreateRequest true "提交信息"
// @Success 200 {object} APIResponse{data=models.Submission} "创建成功"
// @Failure 400 {object} APIResponse "值校验失败"
// @Failure 404 {object} APIResponse "指标不存在"
// @Router /indicators/{id}/submissions [post]
func (c *SubmissionController) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")

	var req SubmissionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	reportedAt, err := utils.ParseDate(req.ReportedAt, "")
	if err != nil {
		render.JSON(w, r, BadRequestResponse("无效的上报日期", err))
		return
	}

	sub, err := c.submissionService.CreateSubmission(r.Context(), indicatorID, submission.CreateSubmissionRequest{
		ReportedAt:        reportedAt,
		Value:             req.Value,
		Evidence:          req.Evidence,
		DisaggregationKey: req.DisaggregationKey,
	}, req.CreatedBy)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("创建提交失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建提交成功", sub))
}

// ListSubmissions 获取提交列表
// @Summary 获取提交列表
// @Description 按时间范围查询指标的提交，reportedAt升序
// @Tags 提交管理
// @Produce json
// @Param id path string true "指标ID"
// @Param from query string false "起始日期" example(2024-01-01)
// @Param to query string false "截止日期" example(2024-12-31)
// @Success 200 {object} APIResponse{data=[]models.Submission}
// @Router /indicators/{id}/submissions [get]
func (c *SubmissionController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := utils.ParseDate(v, "")
		if err != nil {
			render.JSON(w, r, BadRequestResponse("无效的起始日期", err))
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := utils.ParseDate(v, "")
		if err != nil {
			render.JSON(w, r, BadRequestResponse("无效的截止日期", err))
			return
		}
		to = &parsed
	}

	submissions, err := c.submissionService.ListSubmissions(r.Context(), indicatorID, from, to)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取提交列表失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取提交列表成功", submissions))
}

// UpdateAnomalyStatus 更新异常状态
// @Summary 更新异常状态
// @Description 对被标记为异常的提交执行状态流转
// @Tags 异常复核
// @Accept json
// @Produce json
// @Param id path string true "提交ID"
// @Param review body AnomalyReviewRequest true "复核信息"
// @Success 200 {object} APIResponse{data=models.Submission}
// @Failure 400 {object} APIResponse "提交未被标记为异常或状态无效"
// @Router /submissions/{id}/anomaly-status [put]
func (c *SubmissionController) UpdateAnomalyStatus(w http.ResponseWriter, r *http.Request) {
	c.reviewAnomaly(w, r, "")
}

// AcknowledgeAnomaly 确认异常
// @Summary 确认异常
// @Description 将异常提交标记为已确认
// @Tags 异常复核
// @Accept json
// @Produce json
// @Param id path string true "提交ID"
// @Param review body AnomalyReviewRequest true "复核信息"
// @Success 200 {object} APIResponse{data=models.Submission}
// @Router /submissions/{id}/acknowledge [post]
func (c *SubmissionController) AcknowledgeAnomaly(w http.ResponseWriter, r *http.Request) {
	c.reviewAnomaly(w, r, meta.AnomalyStatusAcknowledged)
}

// ResolveAnomaly 处理异常
// @Summary 处理异常
// @Description 将异常提交标记为已处理
// @Tags 异常复核
// @Accept json
// @Produce json
// @Param id path string true "提交ID"
// @Param review body AnomalyReviewRequest true "复核信息"
// @Success 200 {object} APIResponse{data=models.Submission}
// @Router /submissions/{id}/resolve [post]
func (c *SubmissionController) ResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	c.reviewAnomaly(w, r, meta.AnomalyStatusResolved)
}

// MarkFalsePositive 标记误报
// @Summary 标记误报
// @Description 将异常提交标记为误报
// @Tags 异常复核
// @Accept json
// @Produce json
// @Param id path string true "提交ID"
// @Param review body AnomalyReviewRequest true "复核信息"
// @Success 200 {object} APIResponse{data=models.Submission}
// @Router /submissions/{id}/false-positive [post]
func (c *SubmissionController) MarkFalsePositive(w http.ResponseWriter, r *http.Request) {
	c.reviewAnomaly(w, r, meta.AnomalyStatusFalsePositive)
}

// reviewAnomaly 异常复核的公共处理，fixedStatus为空时取请求体中的status
func (c *SubmissionController) reviewAnomaly(w http.ResponseWriter, r *http.Request, fixedStatus string) {
	submissionID := chi.URLParam(r, "id")

	var req AnomalyReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	status := fixedStatus
	if status == "" {
		status = req.Status
	}

	sub, err := c.submissionService.UpdateAnomalyStatus(r.Context(), submissionID, status, req.ReviewedBy, req.Notes)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("更新异常状态失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新异常状态成功", sub))
}

// GetCategoryDistribution 获取分类分布
// @Summary 获取分类分布
// @Description 统计分类指标各分类的出现次数与占比，按次数降序
// @Tags 提交管理
// @Produce json
// @Param id path string true "指标ID"
// @Success 200 {object} APIResponse{data=[]categorical.CategoryCount}
// @Failure 400 {object} APIResponse "非分类指标"
// @Router /indicators/{id}/category-distribution [get]
func (c *SubmissionController) GetCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")
	distribution, err := c.submissionService.CategoryDistribution(r.Context(), indicatorID)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取分类分布失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取分类分布成功", distribution))
}

// GetCategoryTrend 获取分类趋势
// @Summary 获取分类趋势
// @Description 比较窗口内与窗口前的主导分类是否变化
// @Tags 提交管理
// @Produce json
// @Param id path string true "指标ID"
// @Param window_days query int false "窗口天数" default(30)
// @Success 200 {object} APIResponse{data=categorical.CategoryTrendResult}
// @Router /indicators/{id}/category-trend [get]
func (c *SubmissionController) GetCategoryTrend(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")
	windowDays, _ := strconv.Atoi(r.URL.Query().Get("window_days"))
	if windowDays <= 0 {
		windowDays = 30
	}

	trend, err := c.submissionService.CategoryTrend(r.Context(), indicatorID, windowDays)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取分类趋势失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取分类趋势成功", trend))
}

// GetReportingGaps 获取缺报区间
// @Summary 获取缺报区间
// @Description 按期望报告频率检测提交时间线中的缺报区间
// @Tags 提交管理
// @Produce json
// @Param id path string true "指标ID"
// @Param cadence query string false "报告频率，缺省取指标配置" Enums(DAILY,WEEKLY,MONTHLY)
// @Success 200 {object} APIResponse{data=[]submission.ReportingGap}
// @Router /indicators/{id}/reporting-gaps [get]
func (c *SubmissionController) GetReportingGaps(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")
	gaps, err := c.submissionService.ReportingGaps(r.Context(), indicatorID, r.URL.Query().Get("cadence"))
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取缺报区间失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取缺报区间成功", gaps))
}
