/*
 * @module api/controllers/template_controller
 * @description 导入导出模板控制器
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow HTTP请求 -> 参数验证 -> 服务调用 -> 响应返回
 * @rules 同一指标同一类型仅保留一个默认模板，设置默认时旧默认被取消
 * @dependencies service/importer, service/models, service/meta
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"net/http"

	"mne-service/service"
	"mne-service/service/importer"
	"mne-service/service/meta"
	"mne-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// TemplateController 模板管理控制器
type TemplateController struct {
	templateService *importer.TemplateService
}

// NewTemplateController 创建模板管理控制器
func NewTemplateController() *TemplateController {
	return &TemplateController{
		templateService: service.GlobalTemplateService,
	}
}

// CreateTemplate 创建模板
// @Summary 创建模板
// @Description 创建导入或导出模板，is_default为true时取消同指标同类型的旧默认
// @Tags 模板管理
// @Accept json
// @Produce json
// @Param template body models.Template true "模板定义"
// @Success 200 {object} APIResponse{data=models.Template}
// @Failure 400 {object} APIResponse "模板类型无效"
// @Router /templates [post]
func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	if !meta.IsValidTemplateKind(tpl.Kind) {
		render.JSON(w, r, BadRequestResponse("无效的模板类型", nil))
		return
	}

	if err := c.templateService.CreateTemplate(r.Context(), &tpl); err != nil {
		render.JSON(w, r, InternalErrorResponse("创建模板失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建模板成功", tpl))
}

// GetTemplate 获取模板
// @Summary 获取模板
// @Description 按ID获取模板定义
// @Tags 模板管理
// @Produce json
// @Param id path string true "模板ID"
// @Success 200 {object} APIResponse{data=models.Template}
// @Failure 404 {object} APIResponse "模板不存在"
// @Router /templates/{id} [get]
func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := c.templateService.GetTemplate(r.Context(), id)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取模板失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取模板成功", tpl))
}

// GetDefaultTemplate 获取默认模板
// @Summary 获取默认模板
// @Description 获取指标的默认导入或导出模板，不存在时按数据类型自动创建
// @Tags 模板管理
// @Produce json
// @Param id path string true "指标ID"
// @Param kind query string false "模板类型" Enums(IMPORT,EXPORT) default(IMPORT)
// @Success 200 {object} APIResponse{data=models.Template}
// @Failure 404 {object} APIResponse "指标不存在"
// @Router /indicators/{id}/default-template [get]
func (c *TemplateController) GetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = meta.TemplateKindImport
	}
	if !meta.IsValidTemplateKind(kind) {
		render.JSON(w, r, BadRequestResponse("无效的模板类型", nil))
		return
	}

	indicator, err := service.GlobalSubmissionService.GetIndicator(r.Context(), indicatorID)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取指标失败", err))
		return
	}

	tpl, err := c.templateService.GetOrCreateDefault(r.Context(), indicator, kind)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取默认模板失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取默认模板成功", tpl))
}
