/*
 * @module api/controllers/import_controller
 * @description CSV导入控制器，提供文件上传暂存、校验、提交、回滚与报告下载接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_pipeline.md
 * @stateFlow 上传暂存 -> 校验 -> 提交(后台) -> 轮询状态 -> 报告下载/回滚
 * @rules 提交接口立即返回，调用方通过任务状态轮询进度
 * @dependencies service/importer, service/models, service/meta
 * @refs api/routes.go
 */

package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"mne-service/service"
	"mne-service/service/importer"
	"mne-service/service/meta"
	"mne-service/service/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// maxUploadSize 上传文件大小上限，32MB
const maxUploadSize = 32 << 20

// ImportController CSV导入控制器
type ImportController struct {
	importService   *importer.Service
	templateService *importer.TemplateService
}

// NewImportController 创建CSV导入控制器
func NewImportController() *ImportController {
	return &ImportController{
		importService:   service.GlobalImportService,
		templateService: service.GlobalTemplateService,
	}
}

// UploadImportFile 上传导入文件
// @Summary 上传导入文件
// @Description 上传CSV文件并解析暂存为行级记录，任务进入VALIDATING状态
// @Description
// @Description **表单字段:**
// @Description - file: CSV文件，必须包含表头行
// @Description - import_mode: CREATE_ONLY或UPSERT，默认CREATE_ONLY
// @Description - template_id: 可选，缺省使用指标的默认导入模板
// @Description - charset: 可选，utf-8/gbk/gb18030，默认utf-8
// @Tags 导入管理
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "指标ID"
// @Param file formData file true "CSV文件"
// @Param import_mode formData string false "导入模式" Enums(CREATE_ONLY,UPSERT)
// @Param template_id formData string false "模板ID"
// @Param charset formData string false "文件编码"
// @Success 200 {object} APIResponse{data=models.ImportJob} "暂存成功"
// @Failure 400 {object} APIResponse "文件无效或超过行数上限"
// @Router /indicators/{id}/import [post]
func (c *ImportController) UploadImportFile(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.JSON(w, r, BadRequestResponse("解析上传表单失败", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		render.JSON(w, r, BadRequestResponse("缺少上传文件", err))
		return
	}
	defer file.Close()

	importMode := r.FormValue("import_mode")
	if importMode == "" {
		importMode = meta.ImportModeCreateOnly
	}
	if !meta.IsValidImportMode(importMode) {
		render.JSON(w, r, BadRequestResponse("无效的导入模式", nil))
		return
	}

	var templateID *string
	if v := r.FormValue("template_id"); v != "" {
		templateID = &v
	}

	job, err := c.importService.ParseAndStage(r.Context(), importer.StageRequest{
		IndicatorID: indicatorID,
		FileName:    header.Filename,
		FileSize:    header.Size,
		ImportMode:  importMode,
		TemplateID:  templateID,
		Charset:     r.FormValue("charset"),
		CreatedBy:   r.FormValue("created_by"),
		Reader:      file,
	})
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("文件上传暂存失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("文件上传暂存成功", job))
}

// ValidateImportJob 校验导入任务
// @Summary 校验导入任务
// @Description 对暂存行应用模板转换并按指标规则校验，返回行级统计
// @Tags 导入管理
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.ImportJob}
// @Failure 400 {object} APIResponse "任务状态不允许校验"
// @Router /import-jobs/{id}/validate [post]
func (c *ImportController) ValidateImportJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := c.importService.ValidateStagingRows(r.Context(), jobID)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("校验导入任务失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("校验导入任务成功", job))
}

// CommitImportJob 提交导入任务
// @Summary 提交导入任务
// @Description 启动后台批量提交，立即返回，通过任务状态轮询进度
// @Tags 导入管理
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "提交已启动"
// @Failure 400 {object} APIResponse "任务状态不允许提交或正在提交中"
// @Router /import-jobs/{id}/commit [post]
func (c *ImportController) CommitImportJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if err := c.importService.StartCommit(r.Context(), jobID); err != nil {
		render.JSON(w, r, ServiceErrorResponse("启动导入提交失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("导入提交已启动", map[string]string{"job_id": jobID}))
}

// GetImportJob 获取导入任务
// @Summary 获取导入任务
// @Description 查询导入任务状态与行级统计
// @Tags 导入管理
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.ImportJob}
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /import-jobs/{id} [get]
func (c *ImportController) GetImportJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := c.importService.GetJob(r.Context(), jobID)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("获取导入任务失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取导入任务成功", job))
}

// ListImportJobRows 获取任务暂存行
// @Summary 获取任务暂存行
// @Description 分页查询任务的暂存行，支持按校验状态过滤
// @Tags 导入管理
// @Produce json
// @Param id path string true "任务ID"
// @Param status query string false "校验状态过滤" Enums(PENDING,VALID,WARNING,ERROR,IMPORTED)
// @Param limit query int false "每页大小" default(100)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} APIResponse{data=[]models.ImportJobRow}
// @Router /import-jobs/{id}/rows [get]
func (c *ImportController) ListImportJobRows(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	rows, err := c.importService.ListRows(r.Context(), jobID, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取任务暂存行失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("获取任务暂存行成功", rows))
}

// RollbackImportJob 回滚导入任务
// @Summary 回滚导入任务
// @Description 删除该任务写入的全部提交并将任务置为CANCELLED
// @Tags 导入管理
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=map[string]int64} "返回删除数量"
// @Router /import-jobs/{id}/rollback [post]
func (c *ImportController) RollbackImportJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	deleted, err := c.importService.RollbackImport(r.Context(), jobID)
	if err != nil {
		render.JSON(w, r, ServiceErrorResponse("回滚导入任务失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("回滚导入任务成功", map[string]int64{"deleted": deleted}))
}

// DownloadErrorReport 下载错误报告
// @Summary 下载错误报告
// @Description 下载任务校验错误的CSV报告
// @Tags 导入管理
// @Produce text/csv
// @Param id path string true "任务ID"
// @Success 200 {string} string "CSV内容"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /import-jobs/{id}/error-report [get]
func (c *ImportController) DownloadErrorReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="import_errors_%s.csv"`, jobID))
	if err := c.importService.WriteErrorReport(r.Context(), jobID, w); err != nil {
		render.JSON(w, r, ServiceErrorResponse("生成错误报告失败", err))
		return
	}
}

// ExportSubmissions 导出提交数据
// @Summary 导出提交数据
// @Description 按导出模板将指标的提交数据导出为CSV
// @Tags 导入管理
// @Produce text/csv
// @Param id path string true "指标ID"
// @Param template_id query string false "导出模板ID，缺省使用默认导出模板"
// @Param from query string false "起始日期"
// @Param to query string false "截止日期"
// @Success 200 {string} string "CSV内容"
// @Router /indicators/{id}/export [get]
func (c *ImportController) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "id")

	req := importer.ExportRequest{IndicatorID: indicatorID}
	if v := r.URL.Query().Get("template_id"); v != "" {
		req.TemplateID = &v
	}
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := utils.ParseDate(v, "")
		if err != nil {
			render.JSON(w, r, BadRequestResponse("无效的起始日期", err))
			return
		}
		req.From = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := utils.ParseDate(v, "")
		if err != nil {
			render.JSON(w, r, BadRequestResponse("无效的截止日期", err))
			return
		}
		req.To = &parsed
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="submissions_%s.csv"`, indicatorID))
	if err := c.importService.ExportSubmissions(r.Context(), req, w); err != nil {
		render.JSON(w, r, ServiceErrorResponse("导出提交数据失败", err))
		return
	}
}
